package cmd

import (
	"github.com/spf13/cobra"

	"codeintel/internal/tui"
)

func runTUI() error {
	e, err := openEngine(true)
	if err != nil {
		return err
	}
	defer e.Close()

	return tui.Run(tui.Config{Engine: e})
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "tui",
		Short: "Start the interactive UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	})
}
