package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose    bool
	configPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gestured",
	Short: "gestured - multi-touch gesture recognition for the terminal",
	Long: `gestured turns streams of touch contacts into recognized gestures.

Contacts move across an abstract surface; the engine tracks them,
classifies taps, swipes, pans, pinches, rotations, and dwell gestures,
matches user-defined templates, and detects multi-gesture sequences.
Recognition is event-driven: time only advances when input or an
explicit tick arrives, so a recorded trace replays to the exact same
events it produced live.

Run without arguments to open the interactive touch surface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The interactive surface owns the terminal; zap stays out of it.
		switch cmd.Name() {
		case "gestured", "run":
			return nil
		}
		l, err := buildLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// No subcommand opens the touch surface itself.
		return runSurface(runOptions{watch: true})
	},
}

// buildLogger configures the zap logger used by non-interactive commands.
func buildLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging for non-interactive commands")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.gestured/config.yaml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(docsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
