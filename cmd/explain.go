package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagRaw bool

var explainCmd = &cobra.Command{
	Use:   "explain <file>",
	Short: "Ask a local Ollama model to review a file and its metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(false)
		if err != nil {
			return err
		}
		defer e.Close()

		fmt.Fprintf(cmd.ErrOrStderr(), "Asking %s for a review of %s...\n", cfg.Ollama.Model, args[0])
		review, err := e.Review(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if flagRaw {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), review)
			return err
		}
		return printMarkdown(cmd, review)
	},
}

func init() {
	explainCmd.Flags().BoolVar(&flagRaw, "raw", false, "print the markdown without rendering")
	rootCmd.AddCommand(explainCmd)
}
