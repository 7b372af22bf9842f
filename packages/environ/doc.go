// Package environ merges variable sets from every scope that applies to a
// request into one flat map.
//
// Precedence, lowest to highest: the project's global environment, the
// workspace base environment, an explicitly selected sub-environment, folder
// variables along the ancestor chain (root to leaf, so the folder nearest
// the request wins), and finally caller overrides. Each layer is a shallow
// key-overwrite producing a fresh map; values are scalars so there is no
// deep merging. Missing layers degrade silently: the merge never fails, it
// only accumulates warnings.
package environ
