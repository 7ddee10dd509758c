package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/stackvity/json2csv/internal/cli"
	"github.com/stackvity/json2csv/internal/cli/config"
)

var (
	// These are set during build time using -ldflags
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// newRootCmd builds the json2csv command. Each call returns a command with
// fresh flag state.
func newRootCmd() *cobra.Command {
	var (
		cfgFile     string
		profileName string
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "json2csv [flags] [input ...]",
		Short: "Converts JSON and YAML documents to CSV.",
		Long: `json2csv converts a JSON or YAML document holding an array of records
(or a single record) into CSV text.

Inputs are files, directories (walked recursively for .json, .yaml and .yml
files) or "-" for stdin. With no inputs the document is read from stdin.
A single input is written to stdout unless --output names a file or
directory; several inputs need --output to be a directory.

Columns default to the keys of the first record. --fields selects and orders
them, and with --nested dot-separated paths reach into nested objects.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, logger, err := config.LoadAndValidate(cfgFile, profileName, version, verbose, cmd.Flags(), args)
			if err != nil {
				return err
			}

			return cli.Run(ctx, cfg, logger, cli.Streams{
				In:  cmd.InOrStdin(),
				Out: cmd.OutOrStdout(),
				Err: cmd.ErrOrStderr(),
			})
		},
	}
	cmd.SetVersionTemplate(`{{.Name}} version {{.Version}}` + "\n")

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file path (default is search standard locations like ., $HOME/.config/json2csv/)")
	cmd.PersistentFlags().StringVar(&profileName, "profile", "", "Name of configuration profile to use")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging output (disables the progress view)")

	config.RegisterFlags(cmd.Flags())
	return cmd
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return newRootCmd().Execute()
}
