// Package cli provides the command-line interface for parley.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/parley/internal/ai"
	"github.com/raphaelgruber/parley/internal/config"
	"github.com/raphaelgruber/parley/internal/metrics"
	"github.com/raphaelgruber/parley/internal/session"
	"github.com/raphaelgruber/parley/internal/storage"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global config and controller, built in PersistentPreRunE.
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	collector  *metrics.Collector
	controller *session.Controller
)

// rootCmd represents the base command. Without a subcommand it starts
// the interactive chat UI.
var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Terminal AI chat client",
	Long: `Parley is a terminal chat client for AI conversations.

Conversations are kept in named threads, persisted locally, and survive
restarts. Running parley without a subcommand opens the interactive chat
UI; subcommands offer one-shot access to the same conversation store.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands that only touch configuration skip controller setup
		switch cmd.Name() {
		case "version", "help", "path", "show", "set-key":
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		collector = metrics.NewCollector()

		completer, err := ai.New(cfg, logger, collector)
		if err != nil {
			return fmt.Errorf("init completion client: %w", err)
		}

		store := storage.New(storage.NewFileSlot(cfg.SlotPath()), logger, collector)
		controller = session.New(store, completer, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(controller)
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
}
