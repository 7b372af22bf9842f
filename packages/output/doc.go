// Package output provides formatters for displaying execution results.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//
// Warnings are printed to stderr so stdout stays clean for response
// bodies and JSON payloads.
package output
