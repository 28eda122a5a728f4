// Package cmdutil provides shared utilities for velux subcommands: global
// flag storage, connection setup, and event-surface-to-logger wiring.
// Grounded on dittofs's cmd/dittofsctl/cmdutil package (GlobalFlags plus a
// GetAuthenticatedClient-style connection builder), scaled down to the
// gateway client's smaller configuration surface.
package cmdutil

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/klf200/velux/internal/cli/output"
	"github.com/klf200/velux/internal/config"
	"github.com/klf200/velux/internal/logger"
	"github.com/klf200/velux/internal/protocol/klf200"
)

// Flags stores global flag values accessible by subcommands, the same
// package-level-singleton shape dittofs's cmdutil.Flags uses.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values synced by the root command's
// PersistentPreRun.
type GlobalFlags struct {
	Host       string
	Password   string
	Timeout    string
	ConfigFile string
	Verbosity  int // 0=log 1=debug 2=verbose 3=very-verbose, per -D escalation
}

// InvocationID is a correlation id stamped onto every top-level log line
// for one CLI invocation, so a user piping `-D` output into a bug report
// has one id to grep across concurrent commands (SPEC_FULL.md DOMAIN
// STACK, grounded on dittofs's use of google/uuid for correlation ids).
var InvocationID = uuid.NewString()

// Printer returns the process-wide JSON printer commands render results
// through.
func Printer() *output.Printer { return output.DefaultPrinter() }

// LoadConfig resolves a config.Config from the root command's bound flags.
func LoadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	return config.Load(flags, Flags.ConfigFile)
}

// Connect dials and authenticates a gateway connection from cfg, wiring its
// event surface into the logger at the verbosity level the -D flag
// resolved to. If --metrics-addr was set, the connection's metrics are
// registered with the default Prometheus registry; velux does not serve
// that registry over HTTP.
func Connect(ctx context.Context, cfg *config.Config) (*klf200.Connection, error) {
	events := klf200.NewEventBus()
	events.Subscribe(observer(Flags.Verbosity))

	var reg prometheus.Registerer
	if cfg.MetricsAddr != "" {
		reg = prometheus.DefaultRegisterer
	}

	conn := klf200.NewConnection(klf200.Config{
		Host:           cfg.Host,
		Password:       cfg.Password,
		DialTimeout:    cfg.Timeout,
		StrictChecksum: cfg.StrictChecksum,
		Registerer:     reg,
	}, events)

	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return conn, nil
}

// observer builds the klf200.Observer the CLI subscribes for the given -D
// verbosity level: 0 logs lifecycle events at Info, 1 additionally logs at
// Debug, 2 ("verbose") adds truncated hex of send/data frames, 3
// ("very-verbose") logs the full buffer plus every notification.
func observer(verbosity int) klf200.Observer {
	return func(ev klf200.Event) {
		switch ev.Type {
		case klf200.EventConnecting:
			logger.Info("connecting", logger.Host(ev.Host), "invocation_id", InvocationID)
		case klf200.EventConnect:
			logger.Info("connected", logger.Peer(ev.Peer), "invocation_id", InvocationID)
		case klf200.EventDisconnect:
			logger.Info("disconnected", logger.Peer(ev.Peer), "invocation_id", InvocationID)
		case klf200.EventSend, klf200.EventData:
			if verbosity < 2 {
				return
			}
			dir := "tx"
			if ev.Type == klf200.EventData {
				dir = "rx"
			}
			logger.Debug("frame", logger.Direction(dir), logger.BytesLen(len(ev.Bytes)), "hex", hexPreview(ev.Bytes, verbosity))
		case klf200.EventRequest:
			logger.Debug("request", logger.Command(ev.Request.Command), logger.RequestID(ev.Request.ID))
		case klf200.EventResponse:
			logger.Debug("response", logger.Command(ev.Request.Command), logger.RequestID(ev.Request.ID))
		case klf200.EventNotification:
			if verbosity < 3 {
				return
			}
			logger.Debug("notification", logger.Command(ev.Notification.Name))
		case klf200.EventError:
			if ev.Request != nil {
				logger.Warn("async error", logger.Command(ev.Request.Command), logger.Err(ev.Err), "invocation_id", InvocationID)
			} else {
				logger.Warn("async error", logger.Err(ev.Err), "invocation_id", InvocationID)
			}
		}
	}
}

func hexPreview(b []byte, verbosity int) string {
	if verbosity < 3 && len(b) > 32 {
		return hex.EncodeToString(b[:32]) + "..."
	}
	return hex.EncodeToString(b)
}
