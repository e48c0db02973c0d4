package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-mfs/internal/config"
	"github.com/deploymenttheory/go-mfs/pkg/app"
	"github.com/deploymenttheory/go-mfs/pkg/app/analyze"
)

var (
	// Global output flags
	verbose bool
	quiet   bool
	noColor bool

	settings = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "go-mfs",
	Short: "Intel CSE MFS file system reconstruction tool",
	Long: `go-mfs is a read-only command-line tool that reconstructs the MFS
file system of Intel CSME, CSTXE and CSSPS firmware from a raw MFS partition
or an MFSB backup container.

It validates every page and chunk checksum, resolves the FAT into Low Level
Files, walks the Home Directory or resolves names through a File Table
dictionary, and decodes the Intel and OEM configuration files.

Commands:
  analyze     Summarize volume structure, files and diagnostics
  extract     Write the reconstructed tree and record log to disk
  records     List every structural record in traversal order`,
	Version: "0.1.0-dev",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Marks the standard flag set parsed for glog; values came through pflag.
		if err := flag.CommandLine.Parse(nil); err != nil {
			return err
		}
		if verbose {
			if err := flag.Set("v", "1"); err != nil {
				return err
			}
		}
		return nil
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	glog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()

	// glog registers its flags on the standard flag set. Its -v shorthand
	// would collide with --verbose, so only the long names are kept.
	_ = flag.Set("logtostderr", "true")
	flag.CommandLine.VisitAll(func(f *flag.Flag) {
		pf := pflag.PFlagFromGoFlag(f)
		pf.Shorthand = ""
		flags.AddFlag(pf)
	})

	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.StringP("output", "o", "table", "output format (table, json, yaml)")
	flags.String("variant", "CSME", "firmware family (CSME, CSTXE, CSSPS)")
	flags.Int("major", 11, "firmware major version")
	flags.Int("minor", 0, "firmware minor version")
	flags.String("file-table", "", "File Table dictionary (YAML)")

	for key, name := range map[string]string{
		"output_format":   "output",
		"variant":         "variant",
		"major":           "major",
		"minor":           "minor",
		"file_table_path": "file-table",
	} {
		_ = settings.BindPFlag(key, flags.Lookup(name))
	}
}

// loadConfig merges mfs-config.yaml, MFS_* variables and flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(settings)
	if err != nil {
		return nil, app.NewError(app.ErrCodeInvalidInput, "failed to load configuration", err)
	}
	return cfg, nil
}

// newContext builds the application context for one command. Verbose runs
// print stage progress on stderr.
func newContext(cmd *cobra.Command, cfg *config.Config) *app.Context {
	ctx := app.NewContext()
	if parent := cmd.Context(); parent != nil {
		ctx.Context = parent
	}
	ctx.OutputFormat = cfg.OutputFormat
	ctx.Verbose = verbose
	ctx.Quiet = quiet
	ctx.NoColor = noColor
	if verbose {
		ctx.SetProgress(ctx.PrintProgress)
	}
	return ctx
}

func newRequest(cfg *config.Config, imagePath string) *analyze.Request {
	return &analyze.Request{
		ImagePath: imagePath,
		Target: app.GenerationTarget{
			Variant: cfg.Variant,
			Major:   cfg.Major,
			Minor:   cfg.Minor,
		},
		FileTablePath: cfg.FileTablePath,
	}
}

// run handles the request and prints the response. A structural failure
// still prints the diagnostics gathered before it.
func run(ctx *app.Context, request *analyze.Request, view string) error {
	if err := analyze.ValidateFormat(ctx.OutputFormat); err != nil {
		return err
	}

	response, err := analyze.Handle(ctx, request)
	if response != nil && !ctx.Quiet {
		formatter := &analyze.Formatter{Out: os.Stdout, NoColor: ctx.NoColor}
		if ferr := formatter.FormatOutput(response, ctx.OutputFormat, view); ferr != nil && err == nil {
			err = ferr
		}
	}
	if err == nil && ctx.Verbose && response != nil {
		ctx.Log(analyze.FormatSummary(response))
	}
	return err
}
