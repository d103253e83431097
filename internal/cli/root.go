// Package cli provides the command-line interface for the unmixing engine.
package cli

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/unmix/internal/cli/commands"
	"github.com/katalvlaran/unmix/internal/cli/config"
)

// Version is set at build time.
var Version = "0.1.0"

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "unmix",
		Short: "Separate mixed causal regimes by residual-signature EM",
		Long: `unmix regresses every variable on candidate parents, clusters the
residual signatures with a Gaussian mixture and splits the rows into
per-regime datasets.

Configuration is read from defaults, unmix.yaml (or --config), UNMIX_*
environment variables and flags, in increasing priority.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, used, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger := commands.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			if used != "" {
				logger.Debug().Str("file", used).Msg("using config file")
			}
			cmd.SetContext(commands.WithEnv(cmd.Context(), &commands.Env{
				Config:   cfg,
				Logger:   logger,
				Registry: prometheus.NewRegistry(),
			}))

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./unmix.yaml)")
	pf.BoolP("verbose", "v", false, "Verbose (debug) logging")
	pf.StringP("output", "o", config.OutputTable, "Output format (table|json)")
	pf.Int64("seed", 13, "Random seed")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.OutputTable, config.OutputJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewSelectKCommand())
	rootCmd.AddCommand(commands.NewSimulateCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	return nil
}
