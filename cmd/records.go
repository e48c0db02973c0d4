package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-mfs/pkg/app/analyze"
)

var recordsCmd = &cobra.Command{
	Use:   "records [image-path]",
	Short: "List every structural record in traversal order",
	Long: `List the Home Directory, Configuration and File Table records visited
while reconstructing the image, including "." and ".." entries.

Examples:
  go-mfs records mfs.bin --major 11
  go-mfs records mfs.bin -o yaml`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		request := newRequest(cfg, args[0])
		request.IncludeRecords = true
		return run(newContext(cmd, cfg), request, analyze.ViewRecords)
	},
}

func init() {
	rootCmd.AddCommand(recordsCmd)
}
