// Command wizard serves and drives the installer portal wizards.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/enetx/wizard/config"
	"github.com/enetx/wizard/internal/logging"
)

func main() {
	if err := logging.Configure(logging.LevelWarn); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorMsg("%v", err))
		os.Exit(1)
	}
}

// app carries state shared by every subcommand.
type app struct {
	configPath string
	debug      bool
	cfg        config.Config
}

func rootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "wizard",
		Short:         "Step-flow wizards and navigation authorization for the installer portal",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			level := cfg.LogLevel
			if a.debug {
				level = logging.LevelDebug
			}

			return logging.ConfigureTo(cmd.ErrOrStderr(), level)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "wizard.yaml", "Path to the YAML config file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	root.AddCommand(serveCmd(a))
	root.AddCommand(adviseCmd(a))
	root.AddCommand(authorizeCmd(a))
	root.AddCommand(dotCmd(a))

	return root
}
