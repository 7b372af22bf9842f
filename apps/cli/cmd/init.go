package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/quiverhq/quiver/packages/core/config"
	"github.com/quiverhq/quiver/packages/model"
	"github.com/quiverhq/quiver/packages/store"
	"github.com/spf13/cobra"
)

var (
	forceInit     bool
	initNoExample bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a quiver data directory",
	Long: `Initialize the quiver data directory and write a starter
configuration file into the current directory.

This creates:
  - .quiver.config.json  - Configuration file
  - the data directory   - Collection store (default ~/.quiver/collections)
  - a starter workspace with a base environment and an example request

Examples:
  quiver init
  quiver init --data-dir ./collections
  quiver init --force --no-example`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config file")
	initCmd.Flags().BoolVar(&initNoExample, "no-example", false, "Skip creating the starter workspace")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, config.ConfigFilenames[0])
	if !forceInit {
		if _, err := os.Stat(configFile); err == nil {
			return fmt.Errorf("file already exists: %s (use --force to overwrite)", configFile)
		}
	}

	cfg := config.DefaultConfig()
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	} else {
		cfg.DataDir = config.DefaultDataDir()
	}

	if err := cfg.Save(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	st, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", st.Dir())

	if !initNoExample {
		ws := model.NewWorkspace("Getting Started", model.ScopeCollection, "")
		base := model.NewEnvironment("Base Environment", ws.ID)
		base.Data["baseUrl"] = "http://localhost:3000"
		req := model.NewRequest("Health check", ws.ID, "GET", "{{baseUrl}}/health")
		col := &model.Collection{
			Workspace:    ws,
			Requests:     []*model.Request{req},
			Environments: []*model.Environment{base},
		}
		if err := st.Save(ws.ID, col); err != nil {
			return fmt.Errorf("failed to create starter workspace: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created workspace: %s (%s)\n", ws.Name, ws.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "\nRun 'quiver send %s' to execute the example request.\n", req.ID)
	}

	return nil
}
