// Package model defines the entity types that make up a request collection.
//
// A collection is a tree rooted at a Workspace: folders nest arbitrarily
// deep, requests hang off the workspace or any folder, and environments
// supply variable sets at workspace scope. Every entity carries a typed
// identifier (wrk_, fld_, req_, env_, exc_, prj_) so its kind can be
// recovered from the id alone, but code should pass an EntityRef and branch
// on the explicit Kind rather than re-parsing prefixes.
package model
