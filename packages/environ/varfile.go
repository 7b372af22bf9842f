package environ

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadVarFile reads a flat variable map from a YAML (or JSON) file.
// Environment values are scalars by model, so nested structures are
// rejected rather than silently flattened.
func LoadVarFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variable file: %w", err)
	}

	raw := make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse variable file %s: %w", path, err)
	}

	vars := make(map[string]any, len(raw))
	for key, value := range raw {
		switch value.(type) {
		case string, bool, int, int64, uint64, float64, nil:
			vars[key] = value
		default:
			return nil, fmt.Errorf("variable %q is not a scalar (got %T)", key, value)
		}
	}
	return vars, nil
}

// SaveVarFile writes a variable map as YAML with stable key order.
func SaveVarFile(path string, vars map[string]any) error {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		var keyNode, valueNode yaml.Node
		keyNode.SetString(k)
		if err := valueNode.Encode(vars[k]); err != nil {
			return fmt.Errorf("encode variable %q: %w", k, err)
		}
		doc.Content = append(doc.Content, &keyNode, &valueNode)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode variable file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
