package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "quiver",
	Short: "Request collections with layered environments.",
	Long: `quiver manages hierarchical HTTP request collections: workspaces
hold folders and requests, environments supply variables, and {{key}}
placeholders are resolved at send time from the layered environment
chain (global, base, sub-environment, folder, command-line overrides).`,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(workspaceCmd)
	rootCmd.AddCommand(folderCmd)
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
