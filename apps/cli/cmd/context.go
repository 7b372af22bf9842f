package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/quiverhq/quiver/packages/core/config"
	"github.com/quiverhq/quiver/packages/model"
	"github.com/quiverhq/quiver/packages/store"
)

var (
	configFlag  string
	dataDirFlag string
	noColorFlag bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("QUIVER_CONFIG", ""), "Path to config file (env: QUIVER_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", getEnvString("QUIVER_DATA_DIR", ""), "Collection store directory (env: QUIVER_DATA_DIR)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("QUIVER_NO_COLOR", false), "Disable colored output (env: QUIVER_NO_COLOR)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// loadConfig resolves the effective configuration: an explicit --config
// path wins, otherwise the working directory is searched, otherwise
// defaults apply. CLI flags override file values at the call sites.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	if cfg.DataDir == "" {
		cfg.DataDir = config.DefaultDataDir()
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*store.FileStore, error) {
	return store.NewFileStore(cfg.DataDir)
}

func colorDisabled(cfg *config.Config) bool {
	return noColorFlag || cfg.GetNoColor()
}

// findCollectionOf scans all collections for the entity with the given id
// and returns the owning collection id. The lookup accepts workspace,
// folder, request, and environment ids.
func findCollectionOf(st store.Store, id string) (string, *model.Collection, error) {
	all, err := st.GetAll()
	if err != nil {
		return "", nil, err
	}
	if col, ok := all[id]; ok {
		return id, col, nil
	}
	for colID, col := range all {
		if col.FolderByID(id) != nil || col.RequestByID(id) != nil || col.EnvironmentByID(id) != nil {
			return colID, col, nil
		}
	}
	return "", nil, fmt.Errorf("no entity with id %q", id)
}

func sortedKeys(all map[string]*model.Collection) []string {
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// parsePairs turns repeated key=value flags into a map, rejecting
// malformed entries.
func parsePairs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid variable %q (expected key=value)", p)
		}
		out[key] = value
	}
	return out, nil
}
