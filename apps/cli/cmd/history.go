package cmd

import (
	"fmt"

	"github.com/quiverhq/quiver/packages/history"
	"github.com/quiverhq/quiver/packages/model"
	"github.com/quiverhq/quiver/packages/output"
	"github.com/spf13/cobra"
)

var (
	historyArchiveFlag bool
	historyLimitFlag   int
	historyJSONFlag    bool
	historyPathFlag    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect execution history",
	Long: `Inspect execution history. Every request keeps a bounded log of
its most recent executions inside the collection; when an archive is
configured, every execution is also appended to a SQLite database that
the stats and values subcommands query.

Examples:
  quiver history req_abc123
  quiver history show req_abc123 --archive --limit 100
  quiver history stats req_abc123
  quiver history values req_abc123 --path data.token
  quiver history clear req_abc123`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runHistoryShow(cmd, args)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <request-id>",
	Short: "List recorded executions, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	_, col, err := findCollectionOf(st, args[0])
	if err != nil {
		return err
	}
	req := col.RequestByID(args[0])
	if req == nil {
		return fmt.Errorf("no request with id %q", args[0])
	}

	entries := req.History
	if historyArchiveFlag {
		if cfg.ArchivePath == "" {
			return fmt.Errorf("no archive configured (set archivePath in the config file)")
		}
		archive, err := history.OpenArchive(cfg.ArchivePath)
		if err != nil {
			return err
		}
		defer archive.Close()
		entries, err = archive.ByRequest(args[0], historyLimitFlag)
		if err != nil {
			return err
		}
	} else if historyLimitFlag > 0 && historyLimitFlag < len(entries) {
		entries = entries[:historyLimitFlag]
	}

	if historyJSONFlag {
		formatter := output.NewJSONFormatter(output.JSONWithWriter(cmd.OutOrStdout()))
		return formatter.FormatHistory(req, entries)
	}
	formatter := output.NewConsoleFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithNoColor(colorDisabled(cfg)),
	)
	formatter.FormatHistory(req, entries)
	return nil
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats <request-id>",
	Short: "Latency percentiles from the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.ArchivePath == "" {
			return fmt.Errorf("no archive configured (set archivePath in the config file)")
		}
		archive, err := history.OpenArchive(cfg.ArchivePath)
		if err != nil {
			return err
		}
		defer archive.Close()

		stats, err := archive.Stats(args[0])
		if err != nil {
			return err
		}
		formatter := output.NewConsoleFormatter(
			output.WithWriter(cmd.OutOrStdout()),
			output.WithNoColor(colorDisabled(cfg)),
		)
		formatter.FormatStats(args[0], stats)
		return nil
	},
}

var historyValuesCmd = &cobra.Command{
	Use:   "values <request-id>",
	Short: "Extract a JSON path from archived response bodies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyPathFlag == "" {
			return fmt.Errorf("--path is required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.ArchivePath == "" {
			return fmt.Errorf("no archive configured (set archivePath in the config file)")
		}
		archive, err := history.OpenArchive(cfg.ArchivePath)
		if err != nil {
			return err
		}
		defer archive.Close()

		values, err := archive.BodyValues(args[0], historyPathFlag, historyLimitFlag)
		if err != nil {
			return err
		}
		for _, v := range values {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear <request-id>",
	Short: "Drop the bounded history of a request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		colID, _, err := findCollectionOf(st, args[0])
		if err != nil {
			return err
		}

		return st.Update(colID, func(col *model.Collection) error {
			req := col.RequestByID(args[0])
			if req == nil {
				return fmt.Errorf("no request with id %q", args[0])
			}
			req.History = nil
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{historyCmd, historyShowCmd} {
		c.Flags().BoolVar(&historyArchiveFlag, "archive", false, "Read from the SQLite archive instead of the bounded log")
		c.Flags().IntVar(&historyLimitFlag, "limit", 0, "Maximum entries to show (0 means all)")
		c.Flags().BoolVar(&historyJSONFlag, "json", false, "Output as JSON")
	}
	historyValuesCmd.Flags().StringVar(&historyPathFlag, "path", "", "JSON path to extract (e.g. data.token)")
	historyValuesCmd.Flags().IntVar(&historyLimitFlag, "limit", 0, "Maximum values to return (0 means all)")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyValuesCmd)
	historyCmd.AddCommand(historyClearCmd)
}
