package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"codeintel/internal/engine"
)

var (
	flagOut     string
	flagWorkers int
)

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Extract every supported file under a directory into metrics.csv",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagWorkers > 0 {
			cfg.Workers = flagWorkers
		}
		e, err := newEngine(engine.Options{})
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Extracting metrics from %s...\n", args[0])
		start := time.Now()

		interactive := isTerminal(os.Stderr)
		res, err := e.Export(cmd.Context(), args[0], func(processed, total int) {
			if interactive {
				fmt.Fprintf(os.Stderr, "\r  %d / %d files", processed, total)
			}
		})
		if interactive {
			fmt.Fprintln(os.Stderr)
		}
		if err != nil {
			return err
		}

		written, err := res.Save(flagOut)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\nDone in %s\n", time.Since(start).Round(time.Millisecond))
		fmt.Fprintf(out, "  Files:   %d total, %d extracted, %d skipped\n",
			res.Stats.FilesTotal, res.Stats.FilesExtracted, res.Stats.FilesSkipped)
		fmt.Fprintf(out, "  Metrics saved to %s\n", written[0])
		if len(written) > 1 {
			fmt.Fprintf(out, "  Skipped %d files, see %s\n", len(res.Skipped), written[1])
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&flagOut, "out", "o", ".", "directory for metrics.csv and skipped_files.csv")
	exportCmd.Flags().IntVar(&flagWorkers, "workers", 0, "parallel workers (default from config)")
	rootCmd.AddCommand(exportCmd)
}
