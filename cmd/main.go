package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"returns-desk/config"
	"returns-desk/internal/logging"
)

var (
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd корневая команда
var rootCmd = &cobra.Command{
	Use:   "returns-desk",
	Short: "Returns processing desk: item lookup, photo grading, claims and search",
	Long: `returns-desk drives the returns-processing backend for warehouse operators.

Operators reach it through a Telegram bot (bot) or an HTTP dashboard API (serve).
The remaining commands are one-shot tools for scripts and debugging.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = logging.New(cfg.App.Mode, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
