package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-mfs/pkg/app/analyze"
)

var extractCmd = &cobra.Command{
	Use:   "extract [image-path]",
	Short: "Write the reconstructed file tree and record log to disk",
	Long: `Reconstruct an MFS partition or MFSB backup and write every file below
an output directory. Low Level Files are written under low-level/, the Home
Directory tree under home/ and configuration files under intel-config/ and
oem-config/. Optionally store files, records and diagnostics in SQLite.

Examples:
  # Extract to ./mfs-out
  go-mfs extract mfs.bin --major 12

  # Extract and keep a record database
  go-mfs extract mfs.bin --dest ./out --record-db mfs.db`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		request := newRequest(cfg, args[0])
		request.OutputDir = cfg.OutputDir
		request.RecordDB = cfg.RecordDB
		return run(newContext(cmd, cfg), request, analyze.ViewSummary)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("dest", "./mfs-out", "output directory")
	extractCmd.Flags().String("record-db", "", "SQLite database for files, records and diagnostics")
	_ = settings.BindPFlag("output_dir", extractCmd.Flags().Lookup("dest"))
	_ = settings.BindPFlag("record_db", extractCmd.Flags().Lookup("record-db"))
}
