// Package engine turns a stored request definition into a live HTTP call.
//
// The executor substitutes variables into the URL, headers, and body,
// injects authentication, dispatches over a Transport, and captures the
// outcome. It never returns a raw error for a failed call: connection
// errors, DNS failures, and timeouts become error outcomes, while every HTTP
// status including 4xx and 5xx is a successful transport outcome. What a
// status means is the caller's business.
package engine
