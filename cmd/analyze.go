package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-mfs/pkg/app/analyze"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [image-path]",
	Short: "Summarize the structure, files and diagnostics of an MFS image",
	Long: `Reconstruct an MFS partition or MFSB backup and print a summary of the
volume, the reconstructed files and every diagnostic raised on the way.

Examples:
  # Analyze a CSME 11 partition
  go-mfs analyze mfs.bin --variant CSME --major 11

  # Analyze a CSME 15 partition with a File Table dictionary
  go-mfs analyze mfs.bin --major 15 --file-table ftbl.yaml -o json

  # Analyze an MFSB backup from an SPI image region
  go-mfs analyze mfsb.bin --variant TXE --major 3`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return run(newContext(cmd, cfg), newRequest(cfg, args[0]), analyze.ViewSummary)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
