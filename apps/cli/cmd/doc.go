// Package cmd implements the quiver CLI commands using Cobra.
//
// Available commands:
//   - init: Create the data directory and a starter configuration
//   - workspace, folder, request, env: Manage collection entities
//   - send: Execute a request with layered variable resolution
//   - list: Display a workspace tree
//   - history: Inspect bounded and archived execution history
//   - version: Show quiver version information
//
// Entity ids carry a typed prefix (wrk_, fld_, req_, env_) so commands
// can locate the owning collection from the id alone.
package cmd
