package cmd

import (
	"fmt"

	"github.com/quiverhq/quiver/packages/output"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [workspace-id]",
	Short: "Display workspace trees",
	Long: `Display the folder and request hierarchy of one workspace, or of
every workspace when no id is given.

Examples:
  quiver list
  quiver list wrk_abc123`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}

		formatter := output.NewConsoleFormatter(
			output.WithWriter(cmd.OutOrStdout()),
			output.WithNoColor(colorDisabled(cfg)),
		)

		if len(args) == 1 {
			col, err := st.Get(args[0])
			if err != nil {
				return fmt.Errorf("cannot load workspace %q: %w", args[0], err)
			}
			formatter.FormatTree(col)
			return nil
		}

		all, err := st.GetAll()
		if err != nil {
			return err
		}
		for _, id := range sortedKeys(all) {
			formatter.FormatTree(all[id])
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	},
}
