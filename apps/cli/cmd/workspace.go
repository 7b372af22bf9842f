package cmd

import (
	"fmt"

	"github.com/quiverhq/quiver/packages/model"
	"github.com/spf13/cobra"
)

var (
	workspaceScopeFlag       string
	workspaceProjectFlag     string
	workspaceDescriptionFlag string
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage workspaces",
	Long: `Manage workspaces, the top-level containers for folders,
requests, and environments. Each workspace is stored as one collection
document in the data directory.

Examples:
  quiver workspace create "My API"
  quiver workspace create "Globals" --scope environment --project prj_abc123
  quiver workspace list
  quiver workspace delete wrk_abc123`,
}

var workspaceCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new workspace",
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

		ws := model.NewWorkspace(args[0], model.WorkspaceScope(workspaceScopeFlag), workspaceProjectFlag)
		ws.Description = workspaceDescriptionFlag
		col := &model.Collection{Workspace: ws}
		if err := st.Save(ws.ID, col); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", ws.ID)
		return nil
	},
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all workspaces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		all, err := st.GetAll()
		if err != nil {
			return err
		}
		for _, id := range sortedKeys(all) {
			col := all[id]
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s %s\n", col.Workspace.ID, col.Workspace.Scope, col.Workspace.Name)
		}
		return nil
	},
}

var workspaceDeleteCmd = &cobra.Command{
	Use:   "delete <workspace-id>",
	Short: "Delete a workspace and everything in it",
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
		if err := st.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted: %s\n", args[0])
		return nil
	},
}

func init() {
	workspaceCreateCmd.Flags().StringVar(&workspaceScopeFlag, "scope", string(model.ScopeCollection), "Workspace scope: collection, design, environment")
	workspaceCreateCmd.Flags().StringVar(&workspaceProjectFlag, "project", "", "Project id this workspace belongs to")
	workspaceCreateCmd.Flags().StringVar(&workspaceDescriptionFlag, "description", "", "Workspace description")

	workspaceCmd.AddCommand(workspaceCreateCmd)
	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceDeleteCmd)
}
