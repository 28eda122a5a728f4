package commands

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/klf200/velux/cmd/velux/cmdutil"
)

// infoCmd is a convenience command over three plain gateway requests,
// issued concurrently through the same request pipeline every other
// subcommand uses, merged into one JSON summary.
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "print gateway version, protocol version, and state as one summary",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

type infoResult struct {
	Version         any `json:"version"`
	ProtocolVersion any `json:"protocol_version"`
	State           any `json:"state"`
}

type infoRequest struct {
	name string
	dest *any
	desc string
}

func runInfo(cmd *cobra.Command, _ []string) error {
	cfg, err := cmdutil.LoadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	conn, err := cmdutil.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Disconnect()

	var result infoResult
	requests := []infoRequest{
		{"GW_GET_VERSION_REQ", &result.Version, "get version"},
		{"GW_GET_PROTOCOL_VERSION_REQ", &result.ProtocolVersion, "get protocol version"},
		{"GW_GET_STATE_REQ", &result.State, "get state"},
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, r := range requests {
		wg.Add(1)
		go func(name string, dest *any, desc string) {
			defer wg.Done()
			v, err := conn.Request(ctx, name, nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", desc, err)
				}
				return
			}
			*dest = v
		}(r.name, r.dest, r.desc)
	}
	wg.Wait()
	if firstErr != nil {
		return firstErr
	}

	return cmdutil.Printer().Print(result)
}
