package cmd

import (
	"fmt"
	"sort"

	"github.com/quiverhq/quiver/packages/environ"
	"github.com/quiverhq/quiver/packages/model"
	"github.com/spf13/cobra"
)

var envPrivateFlag bool

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Manage environments",
	Long: `Manage environments, the named variable maps requests resolve
{{key}} placeholders against. An environment whose parent is the
workspace is that workspace's base environment; additional environments
parented to the base are sub-environments selectable with 'send --env'.

Examples:
  quiver env create wrk_abc123 "Base Environment"
  quiver env create env_abc123 "Staging"
  quiver env set env_abc123 baseUrl=https://staging.example.com token=xyz
  quiver env import env_abc123 vars.yaml
  quiver env export env_abc123 vars.yaml
  quiver env show env_abc123`,
}

var envCreateCmd = &cobra.Command{
	Use:   "create <parent-id> <name>",
	Short: "Create an environment",
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

		env := model.NewEnvironment(args[1], args[0])
		env.Private = envPrivateFlag
		err = st.Update(colID, func(col *model.Collection) error {
			col.Environments = append(col.Environments, env)
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", env.ID)
		return nil
	},
}

var envSetCmd = &cobra.Command{
	Use:   "set <env-id> <key=value>...",
	Short: "Set environment variables",
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
			env := col.EnvironmentByID(args[0])
			if env == nil {
				return fmt.Errorf("no environment with id %q", args[0])
			}
			if env.Data == nil {
				env.Data = make(map[string]any)
			}
			for k, v := range vars {
				env.Data[k] = v
			}
			env.Touch()
			return nil
		})
	},
}

var envUnsetCmd = &cobra.Command{
	Use:   "unset <env-id> <key>...",
	Short: "Remove environment variables",
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
			env := col.EnvironmentByID(args[0])
			if env == nil {
				return fmt.Errorf("no environment with id %q", args[0])
			}
			for _, key := range args[1:] {
				delete(env.Data, key)
			}
			env.Touch()
			return nil
		})
	},
}

var envShowCmd = &cobra.Command{
	Use:   "show <env-id>",
	Short: "Print an environment's variables",
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
		_, col, err := findCollectionOf(st, args[0])
		if err != nil {
			return err
		}
		env := col.EnvironmentByID(args[0])
		if env == nil {
			return fmt.Errorf("no environment with id %q", args[0])
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", env.Name, env.ID)
		keys := make([]string, 0, len(env.Data))
		for k := range env.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %v\n", k, env.Data[k])
		}
		return nil
	},
}

var envImportCmd = &cobra.Command{
	Use:   "import <env-id> <file>",
	Short: "Merge variables from a YAML or JSON file",
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
		vars, err := environ.LoadVarFile(args[1])
		if err != nil {
			return err
		}

		err = st.Update(colID, func(col *model.Collection) error {
			env := col.EnvironmentByID(args[0])
			if env == nil {
				return fmt.Errorf("no environment with id %q", args[0])
			}
			if env.Data == nil {
				env.Data = make(map[string]any)
			}
			for k, v := range vars {
				env.Data[k] = v
			}
			env.Touch()
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d variables into %s\n", len(vars), args[0])
		return nil
	},
}

var envExportCmd = &cobra.Command{
	Use:   "export <env-id> <file>",
	Short: "Write an environment's variables to a YAML file",
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
		_, col, err := findCollectionOf(st, args[0])
		if err != nil {
			return err
		}
		env := col.EnvironmentByID(args[0])
		if env == nil {
			return fmt.Errorf("no environment with id %q", args[0])
		}
		if err := environ.SaveVarFile(args[1], env.Data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d variables to %s\n", len(env.Data), args[1])
		return nil
	},
}

var envDeleteCmd = &cobra.Command{
	Use:   "delete <env-id>",
	Short: "Delete an environment",
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
			kept := col.Environments[:0]
			found := false
			for _, env := range col.Environments {
				if env.ID == args[0] {
					found = true
					continue
				}
				kept = append(kept, env)
			}
			if !found {
				return fmt.Errorf("no environment with id %q", args[0])
			}
			col.Environments = kept
			return nil
		})
	},
}

func init() {
	envCreateCmd.Flags().BoolVar(&envPrivateFlag, "private", false, "Mark the environment as private")

	envCmd.AddCommand(envCreateCmd)
	envCmd.AddCommand(envSetCmd)
	envCmd.AddCommand(envUnsetCmd)
	envCmd.AddCommand(envShowCmd)
	envCmd.AddCommand(envImportCmd)
	envCmd.AddCommand(envExportCmd)
	envCmd.AddCommand(envDeleteCmd)
}
