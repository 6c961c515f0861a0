package cmd

import (
	"github.com/spf13/cobra"

	"codeintel/internal/report"
)

var flagExtractJSON bool

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the feature vector of a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(false)
		if err != nil {
			return err
		}
		defer e.Close()

		fv, err := e.Extract(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if flagExtractJSON {
			return report.WriteJSON(cmd.OutOrStdout(), fv)
		}
		return report.WriteFeatures(cmd.OutOrStdout(), fv)
	},
}

func init() {
	extractCmd.Flags().BoolVar(&flagExtractJSON, "json", false, "print JSON instead of name: value lines")
	rootCmd.AddCommand(extractCmd)
}
