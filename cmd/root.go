// Package cmd holds the codeintel command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"codeintel/internal/config"
	"codeintel/internal/engine"
	"codeintel/internal/logging"
)

var (
	flagConfig  string
	flagDB      string
	flagColor   string
	flagVerbose bool

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "codeintel",
	Short: "Static code quality metrics for Python and JavaScript",
	Long: "codeintel extracts a fixed set of static metrics from source files, grades them\n" +
		"with a clustering model, keeps a history of analyses and can ask a local model for a review.\n" +
		"Run without a command to start the interactive UI.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

// Execute runs the root command with the given version string.
func Execute(version string) error {
	rootCmd.Version = version
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (.yaml, .yml or .toml; default ./codeintel.{yaml,yml,toml})")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "history database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log progress to stderr")
}

func setup(cmd *cobra.Command, args []string) error {
	logging.SetVerbose(flagVerbose)

	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagDB != "" {
		loaded.Database = flagDB
	}
	if flagColor != "" {
		loaded.Color = flagColor
		if err := loaded.Validate(); err != nil {
			return err
		}
	}
	cfg = loaded

	color.NoColor = !useColor(cfg.Color, os.Stdout)
	return nil
}

// useColor resolves a color mode for the given output.
func useColor(mode string, f *os.File) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return os.Getenv("NO_COLOR") == "" && isTerminal(f)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// openEngine builds the engine. Commands that record history or scan
// directories also get the on-disk feature cache; the rest leave the working
// directory untouched.
func openEngine(history bool) (*engine.Engine, error) {
	return newEngine(engine.Options{History: history, ReadOnly: !history})
}

func newEngine(opts engine.Options) (*engine.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return engine.New(cfg, opts)
}

// terminalWidth returns the width of stdout, or fallback when unknown.
func terminalWidth(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}
