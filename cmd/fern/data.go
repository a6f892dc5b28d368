package main

import (
	"fmt"
	"os"

	"github.com/Gobusters/ectologger"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/pkg/loader"
	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/Ramsey-B/fern/pkg/reconcile"
)

func cliLogger(cmd *cobra.Command) (ectologger.Logger, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	return logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.PrettyLogs})
}

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <file-or-folder>",
		Short: "Convert newline-delimited JSON into JSON arrays",
		Long:  "Converts one file, or every .json file of a folder in place. Malformed lines are logged and skipped. Chinese names are rewritten as pinyin unless --no-translate is set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, flushLogs, err := cliLogger(cmd)
			if err != nil {
				return err
			}
			defer flushLogs()

			noTranslate, _ := cmd.Flags().GetBool("no-translate")
			opts := loader.ConvertOptions{Translate: !noTranslate}

			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}

			var results []loader.ConvertResult
			if info.IsDir() {
				results, err = loader.ConvertFolder(args[0], opts, logger)
			} else {
				out, _ := cmd.Flags().GetString("out")
				var res loader.ConvertResult
				res, err = loader.ConvertNDJSON(args[0], out, opts, logger)
				results = append(results, res)
			}
			if err != nil {
				return err
			}

			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "Converted %s to valid JSON array (%d records, %d skipped)\n", r.Path, r.Records, r.Skipped)
			}
			return nil
		},
	}
	cmd.Flags().String("out", "", "Output file for single-file conversion (default: in place)")
	cmd.Flags().Bool("no-translate", false, "Keep Chinese names instead of converting them to pinyin")
	return cmd
}

func newSubsetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subset <output-folder>",
		Short: "Write the reconciled, limited input collections to a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, flushLogs, err := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.PrettyLogs})
			if err != nil {
				return err
			}
			defer flushLogs()

			ds, err := loader.NewLoader(cfg.DataFolder, logger).Load()
			if err != nil {
				return err
			}
			subset := reconcile.Reconcile(loader.ApplyLimit(ds, cfg.UserVideoActLimit))
			if err := loader.WriteDataset(args[0], subset); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Subset files written to %s (activity: %d, users: %d, courses: %d, videos: %d)\n",
				args[0], len(subset.Activity), len(subset.Users), len(subset.Courses), len(subset.Videos))
			return nil
		},
	}
	return cmd
}
