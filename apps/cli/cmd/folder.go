package cmd

import (
	"fmt"

	"github.com/quiverhq/quiver/packages/model"
	"github.com/spf13/cobra"
)

var (
	folderDescriptionFlag string
	folderVarFlags        []string
)

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage folders",
	Long: `Manage folders inside a workspace. Folders nest under the
workspace or under other folders, and may carry folder-level variables
that apply to every request beneath them.

Examples:
  quiver folder create wrk_abc123 "Users"
  quiver folder create fld_abc123 "Admin" --var token=xyz
  quiver folder set-var fld_abc123 token=xyz
  quiver folder unset-var fld_abc123 token
  quiver folder delete fld_abc123`,
}

var folderCreateCmd = &cobra.Command{
	Use:   "create <parent-id> <name>",
	Short: "Create a folder under a workspace or folder",
	Args:  cobra.ExactArgs(2),
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

		folder := model.NewFolder(args[1], args[0])
		folder.Description = folderDescriptionFlag
		if len(folderVarFlags) > 0 {
			vars, err := parsePairs(folderVarFlags)
			if err != nil {
				return err
			}
			folder.Variables = vars
		}
		err = st.Update(colID, func(col *model.Collection) error {
			col.Folders = append(col.Folders, folder)
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", folder.ID)
		return nil
	},
}

var folderSetVarCmd = &cobra.Command{
	Use:   "set-var <folder-id> <key=value>...",
	Short: "Set folder-level variables",
	Args:  cobra.MinimumNArgs(2),
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
		vars, err := parsePairs(args[1:])
		if err != nil {
			return err
		}

		return st.Update(colID, func(col *model.Collection) error {
			folder := col.FolderByID(args[0])
			if folder == nil {
				return fmt.Errorf("no folder with id %q", args[0])
			}
			if folder.Variables == nil {
				folder.Variables = make(map[string]any)
			}
			for k, v := range vars {
				folder.Variables[k] = v
			}
			folder.Touch()
			return nil
		})
	},
}

var folderUnsetVarCmd = &cobra.Command{
	Use:   "unset-var <folder-id> <key>...",
	Short: "Remove folder-level variables",
	Args:  cobra.MinimumNArgs(2),
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
			folder := col.FolderByID(args[0])
			if folder == nil {
				return fmt.Errorf("no folder with id %q", args[0])
			}
			for _, key := range args[1:] {
				delete(folder.Variables, key)
			}
			folder.Touch()
			return nil
		})
	},
}

var folderDeleteCmd = &cobra.Command{
	Use:   "delete <folder-id>",
	Short: "Delete a folder and its contents",
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
			if col.FolderByID(args[0]) == nil {
				return fmt.Errorf("no folder with id %q", args[0])
			}
			doomed := descendantSet(col, args[0])
			col.Folders = filterFolders(col.Folders, doomed)
			col.Requests = filterRequests(col.Requests, doomed)
			return nil
		})
	},
}

// descendantSet collects the folder id and every folder and request id
// reachable beneath it.
func descendantSet(col *model.Collection, folderID string) map[string]bool {
	doomed := map[string]bool{folderID: true}
	for changed := true; changed; {
		changed = false
		for _, f := range col.Folders {
			if doomed[f.ParentID] && !doomed[f.ID] {
				doomed[f.ID] = true
				changed = true
			}
		}
	}
	for _, r := range col.Requests {
		if doomed[r.ParentID] {
			doomed[r.ID] = true
		}
	}
	return doomed
}

func filterFolders(folders []*model.Folder, doomed map[string]bool) []*model.Folder {
	kept := folders[:0]
	for _, f := range folders {
		if !doomed[f.ID] {
			kept = append(kept, f)
		}
	}
	return kept
}

func filterRequests(requests []*model.Request, doomed map[string]bool) []*model.Request {
	kept := requests[:0]
	for _, r := range requests {
		if !doomed[r.ID] {
			kept = append(kept, r)
		}
	}
	return kept
}

func init() {
	folderCreateCmd.Flags().StringVar(&folderDescriptionFlag, "description", "", "Folder description")
	folderCreateCmd.Flags().StringArrayVar(&folderVarFlags, "var", nil, "Folder variable key=value (repeatable)")

	folderCmd.AddCommand(folderCreateCmd)
	folderCmd.AddCommand(folderSetVarCmd)
	folderCmd.AddCommand(folderUnsetVarCmd)
	folderCmd.AddCommand(folderDeleteCmd)
}
