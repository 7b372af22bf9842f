package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind identifies the entity type behind an id.
type Kind string

const (
	KindProject     Kind = "project"
	KindWorkspace   Kind = "workspace"
	KindFolder      Kind = "folder"
	KindRequest     Kind = "request"
	KindEnvironment Kind = "environment"
	KindExecution   Kind = "execution"
)

var kindPrefixes = map[Kind]string{
	KindProject:     "prj_",
	KindWorkspace:   "wrk_",
	KindFolder:      "fld_",
	KindRequest:     "req_",
	KindEnvironment: "env_",
	KindExecution:   "exc_",
}

// EntityRef is a typed reference to an entity. Kind is carried explicitly so
// callers never have to infer it from the id string.
type EntityRef struct {
	Kind Kind
	ID   string
}

func (r EntityRef) String() string {
	return r.ID
}

// NewID mints a prefixed identifier for the given kind.
func NewID(kind Kind) string {
	prefix, ok := kindPrefixes[kind]
	if !ok {
		prefix = "ent_"
	}
	return prefix + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// NewRef mints an identifier and wraps it in a reference.
func NewRef(kind Kind) EntityRef {
	return EntityRef{Kind: kind, ID: NewID(kind)}
}

// ParseRef recovers the kind from a prefixed id. This is the only place the
// prefix convention is interpreted; everything downstream works with the
// explicit Kind.
func ParseRef(id string) (EntityRef, error) {
	for kind, prefix := range kindPrefixes {
		if strings.HasPrefix(id, prefix) {
			return EntityRef{Kind: kind, ID: id}, nil
		}
	}
	return EntityRef{}, fmt.Errorf("unrecognized id prefix: %q", id)
}

// RefOf wraps a known-kind id without parsing.
func RefOf(kind Kind, id string) EntityRef {
	return EntityRef{Kind: kind, ID: id}
}
