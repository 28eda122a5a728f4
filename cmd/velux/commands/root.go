// Package commands implements the velux CLI's subcommands.
package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/klf200/velux/cmd/velux/cmdutil"
	"github.com/klf200/velux/internal/config"
	"github.com/klf200/velux/internal/logger"
)

// Version is the velux build version, overridable via -ldflags at build time.
var Version = "dev"

// rootCmd is the base command when velux is called without any subcommand.
var rootCmd = &cobra.Command{
	Use:   "velux",
	Short: "Command-line client for a VELUX KLF 200 home automation gateway",
	Long: `velux talks to a KLF 200 gateway over its TLS control port and issues one
gateway command per invocation, printing the decoded confirmation (and any
notifications a streaming command collects) as JSON.

Use "velux <command> --help" for the JSON parameters a given command accepts,
and "velux info" for a one-shot gateway identification summary.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			cmd.Println("velux " + Version)
			os.Exit(0)
		}

		cmdutil.Flags.Host, _ = cmd.Flags().GetString("host")
		cmdutil.Flags.Password, _ = cmd.Flags().GetString("password")
		cmdutil.Flags.ConfigFile, _ = cmd.Flags().GetString("config")

		debugCount, _ := cmd.Flags().GetCount("debug")
		cmdutil.Flags.Verbosity = debugCount

		cfg, err := cmdutil.LoadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		applyVerbosity(cfg, debugCount)

		return logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	},
}

// applyVerbosity maps the -D repeat count onto the logger's level: one -D
// drops to DEBUG; two or more stays at DEBUG but unlocks the frame-hex and
// notification logging cmdutil's observer gates on verbosity.
func applyVerbosity(cfg *config.Config, debugCount int) {
	if debugCount > 0 {
		cfg.Logging.Level = "DEBUG"
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command, for testing.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("host", "H", "", "gateway host[:port] (default port 51200)")
	flags.StringP("password", "P", "", "gateway web UI password")
	flags.DurationP("timeout", "t", 10*time.Second, "overall timeout for connecting and completing the command")
	flags.CountP("debug", "D", "increase protocol/frame logging verbosity (repeatable, up to -DDD)")
	flags.String("config", "", "config file (default "+config.DefaultConfigPath()+")")
	flags.String("metrics-addr", "", "register connection metrics with the default Prometheus registry (opt-in; not served over HTTP)")
	rootCmd.Flags().BoolP("version", "V", false, "print version and exit")

	rootCmd.AddCommand(infoCmd)
	for _, name := range registryCommandNames() {
		rootCmd.AddCommand(newRegistryCommand(name))
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}
