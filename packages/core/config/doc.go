// Package config handles configuration loading for quiver.
//
// It provides functionality for:
//   - Loading configuration from quiver.config.json files
//   - Default configuration values
//   - Per-invocation overrides from CLI flags
package config
