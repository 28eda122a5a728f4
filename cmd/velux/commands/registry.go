package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/klf200/velux/cmd/velux/cmdutil"
	"github.com/klf200/velux/internal/protocol/klf200"
)

// registryCommandNames returns the gateway request names exposed as velux
// subcommands, e.g. "GW_GET_VERSION_REQ"; commandName derives each
// subcommand's name ("GET_VERSION") from it.
func registryCommandNames() []string {
	return klf200.RequestNames()
}

// commandName strips the GW_ prefix and _REQ suffix from a registry name,
// e.g. "GW_GET_PROTOCOL_VERSION_REQ" -> "GET_PROTOCOL_VERSION" (spec.md
// §6's <COMMAND> surface).
func commandName(registryName string) string {
	s := strings.TrimPrefix(registryName, "GW_")
	return strings.TrimSuffix(s, "_REQ")
}

// newRegistryCommand builds a cobra.Command that connects, issues one
// gateway request (with params unmarshalled from an optional JSON
// argument), prints the decoded result, and disconnects.
func newRegistryCommand(registryName string) *cobra.Command {
	name := commandName(registryName)
	return &cobra.Command{
		Use:   name + " [json-params]",
		Short: fmt.Sprintf("issue %s", registryName),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryCommand(cmd, registryName, args)
		},
	}
}

func runRegistryCommand(cmd *cobra.Command, registryName string, args []string) error {
	params, hasParams := klf200.NewParams(registryName)
	if hasParams && len(args) == 1 {
		if err := json.Unmarshal([]byte(args[0]), params); err != nil {
			return fmt.Errorf("parsing JSON params: %w", err)
		}
	}
	if !hasParams {
		params = nil
	}

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

	result, err := conn.Request(ctx, registryName, params)
	if err != nil {
		return err
	}

	return cmdutil.Printer().Print(result)
}
