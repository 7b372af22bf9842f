// Package template replaces {{key}} placeholders with merged variable
// values.
//
// Substitution is a single scan: a substituted value is never re-scanned for
// further placeholders, so keys cannot alias each other's output and the
// result does not depend on key order. Placeholders with no matching
// variable are left verbatim: an unresolved token is passthrough, not an
// error.
package template
