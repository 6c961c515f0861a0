package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"codeintel/internal/quality"
	"codeintel/internal/report"
)

var (
	flagMarkdown  bool
	flagNoHistory bool
	flagJSON      bool
)

var predictCmd = &cobra.Command{
	Use:   "predict <file>",
	Short: "Grade a source file with the quality model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(!flagNoHistory)
		if err != nil {
			return err
		}
		defer e.Close()

		a, err := e.Predict(cmd.Context(), args[0], !flagNoHistory)
		if err != nil {
			return modelHint(err)
		}

		out := cmd.OutOrStdout()
		switch {
		case flagJSON:
			return report.WriteJSON(out, a)
		case flagMarkdown:
			return printMarkdown(cmd, report.AssessmentMarkdown(args[0], a))
		default:
			return report.WriteAssessment(out, args[0], a)
		}
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare <file1> <file2>",
	Short: "Grade two source files and compare them",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(!flagNoHistory)
		if err != nil {
			return err
		}
		defer e.Close()

		c, err := e.Compare(cmd.Context(), args[0], args[1], !flagNoHistory)
		if err != nil {
			return modelHint(err)
		}

		out := cmd.OutOrStdout()
		switch {
		case flagJSON:
			return report.WriteJSON(out, c)
		case flagMarkdown:
			return printMarkdown(cmd, report.ComparisonMarkdown(args[0], args[1], c.First, c.Second))
		default:
			return report.WriteComparison(out, args[0], args[1], c.First, c.Second)
		}
	},
}

func init() {
	for _, c := range []*cobra.Command{predictCmd, compareCmd} {
		c.Flags().BoolVar(&flagMarkdown, "markdown", false, "render the report as markdown")
		c.Flags().BoolVar(&flagNoHistory, "no-history", false, "do not record the analysis")
		c.Flags().BoolVar(&flagJSON, "json", false, "print JSON")
		rootCmd.AddCommand(c)
	}
}

// modelHint adds the configured model path to ErrNoModel.
func modelHint(err error) error {
	if errors.Is(err, quality.ErrNoModel) {
		return fmt.Errorf("%w\nExport a model from the training pipeline to %s or set CODEINTEL_MODEL", err, cfg.Model)
	}
	return err
}

// printMarkdown renders md for the terminal, honoring the color setting.
func printMarkdown(cmd *cobra.Command, md string) error {
	out, err := report.Render(md, terminalWidth(100), !color.NoColor)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
