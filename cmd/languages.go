package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"codeintel/internal/report"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the languages the structural analyzer understands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(false)
		if err != nil {
			return err
		}
		defer e.Close()
		return report.WriteLanguages(cmd.OutOrStdout(), e.Languages())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "codeintel %s\n", color.New(color.FgGreen, color.Bold).Sprint(rootCmd.Version))
		return err
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd, versionCmd)
}
