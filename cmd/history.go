package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"codeintel/internal/report"
)

var (
	flagLimit int
	flagClear bool
	flagK     int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded analyses, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(true)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		if flagClear {
			if err := e.ClearHistory(); err != nil {
				return err
			}
			fmt.Fprintln(out, "History cleared.")
			return nil
		}

		rows, err := e.History(flagLimit)
		if err != nil {
			return err
		}
		if flagJSON {
			return report.WriteJSON(out, rows)
		}
		if len(rows) == 0 {
			fmt.Fprintln(out, "No analyses recorded yet.")
			return nil
		}
		return report.WriteHistory(out, rows)
	},
}

var similarCmd = &cobra.Command{
	Use:   "similar <file>",
	Short: "Find recorded analyses whose metrics are closest to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(true)
		if err != nil {
			return err
		}
		defer e.Close()

		matches, err := e.Similar(cmd.Context(), args[0], flagK)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if flagJSON {
			return report.WriteJSON(out, matches)
		}
		if len(matches) == 0 {
			fmt.Fprintln(out, "No analyses recorded yet.")
			return nil
		}
		return report.WriteMatches(out, matches)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "maximum rows (0 for all)")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "delete every recorded analysis")
	historyCmd.Flags().BoolVar(&flagJSON, "json", false, "print JSON")
	similarCmd.Flags().IntVarP(&flagK, "k", "k", 5, "number of matches")
	similarCmd.Flags().BoolVar(&flagJSON, "json", false, "print JSON")
	rootCmd.AddCommand(historyCmd, similarCmd)
}
