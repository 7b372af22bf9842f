package model

import (
	"strings"
	"time"
)

// WorkspaceScope distinguishes what a workspace holds.
type WorkspaceScope string

const (
	// ScopeCollection is a regular request collection.
	ScopeCollection WorkspaceScope = "collection"
	// ScopeDesign is a design-document workspace.
	ScopeDesign WorkspaceScope = "design"
	// ScopeEnvironment marks the special per-project workspace that carries
	// global environments shared by every workspace in the project.
	ScopeEnvironment WorkspaceScope = "environment"
)

// AuthType enumerates the auth descriptors the engine injects itself.
// Anything else is expected to arrive as pre-configured headers.
type AuthType string

const (
	AuthNone   AuthType = ""
	AuthBearer AuthType = "bearer"
	AuthBasic  AuthType = "basic"
)

// MIME types the executor gives special body treatment.
const (
	MimeJSON    = "application/json"
	MimeGraphQL = "application/graphql"
	MimeForm    = "application/x-www-form-urlencoded"
)

// Workspace is the root of a collection tree.
type Workspace struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Scope       WorkspaceScope `json:"scope"`
	ProjectID   string         `json:"projectId,omitempty"`
	Created     time.Time      `json:"created"`
	Updated     time.Time      `json:"updated"`
}

// Folder groups requests and sub-folders. The parent chain must terminate at
// the owning workspace; the resolver defends against malformed cycles.
type Folder struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	ParentID    string         `json:"parentId"`
	Variables   map[string]any `json:"environment,omitempty"`
	Created     time.Time      `json:"created"`
	Updated     time.Time      `json:"updated"`
}

// Header is one request header. Disabled headers are dropped from the
// processed request, never substituted.
type Header struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

// QueryParam is one query string parameter with an enable flag.
type QueryParam struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

// FormField is one field of a structured form body.
type FormField struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

// GraphQLBody is a GraphQL payload: the query text plus the variables as raw
// JSON text. The text may embed {{placeholders}} until execution time.
type GraphQLBody struct {
	Query     string `json:"query"`
	Variables string `json:"variables,omitempty"`
}

// Body is a request body: raw text with a MIME type, a structured form, or a
// GraphQL payload.
type Body struct {
	MimeType string       `json:"mimeType,omitempty"`
	Text     string       `json:"text,omitempty"`
	Form     []FormField  `json:"form,omitempty"`
	GraphQL  *GraphQLBody `json:"graphql,omitempty"`
}

// Auth describes authentication the engine injects as an Authorization
// header at execution time. Values may contain {{placeholders}}.
type Auth struct {
	Type     AuthType `json:"type"`
	Token    string   `json:"token,omitempty"`
	Username string   `json:"username,omitempty"`
	Password string   `json:"password,omitempty"`
}

// Request is one HTTP request definition.
type Request struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	ParentID string       `json:"parentId"`
	Method   string       `json:"method"`
	URL      string       `json:"url"`
	Headers  []Header     `json:"headers,omitempty"`
	Params   []QueryParam `json:"parameters,omitempty"`
	Body     *Body        `json:"body,omitempty"`
	Auth     *Auth        `json:"authentication,omitempty"`
	History  []Execution  `json:"history,omitempty"`
	Created  time.Time    `json:"created"`
	Updated  time.Time    `json:"updated"`
}

// Environment is a named flat map of scalar variables. An environment whose
// parent is the workspace is the workspace's base environment; additional
// environments are sub-environments selectable at execution time.
type Environment struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	ParentID string         `json:"parentId"`
	Data     map[string]any `json:"data"`
	Private  bool           `json:"private,omitempty"`
	Created  time.Time      `json:"created"`
	Updated  time.Time      `json:"updated"`
}

// ResponseSnapshot captures what came back from the server.
type ResponseSnapshot struct {
	StatusCode int               `json:"statusCode"`
	StatusText string            `json:"statusText,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body,omitempty"`
	DurationMs int64             `json:"durationMs"`
	Size       int64             `json:"size"`
}

// ErrorSnapshot captures a transport-level failure.
type ErrorSnapshot struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// Execution is one recorded request invocation, success or failure.
type Execution struct {
	ID         string            `json:"id"`
	RequestID  string            `json:"requestId"`
	ExecutedAt time.Time         `json:"executedAt"`
	Response   *ResponseSnapshot `json:"response,omitempty"`
	Error      *ErrorSnapshot    `json:"error,omitempty"`
}

// Collection is the unit the store reads and writes: one workspace with all
// of its folders, requests, and environments. Slice order is insertion order
// and is preserved across save/load.
type Collection struct {
	Workspace    *Workspace     `json:"workspace"`
	Folders      []*Folder      `json:"folders,omitempty"`
	Requests     []*Request     `json:"requests,omitempty"`
	Environments []*Environment `json:"environments,omitempty"`
}

// NewWorkspace creates a workspace with a fresh id and timestamps.
func NewWorkspace(name string, scope WorkspaceScope, projectID string) *Workspace {
	now := time.Now().UTC()
	if scope == "" {
		scope = ScopeCollection
	}
	return &Workspace{
		ID:        NewID(KindWorkspace),
		Name:      name,
		Scope:     scope,
		ProjectID: projectID,
		Created:   now,
		Updated:   now,
	}
}

// NewFolder creates a folder under the given parent (workspace or folder).
func NewFolder(name, parentID string) *Folder {
	now := time.Now().UTC()
	return &Folder{
		ID:       NewID(KindFolder),
		Name:     name,
		ParentID: parentID,
		Created:  now,
		Updated:  now,
	}
}

// NewRequest creates a request under the given parent (workspace or folder).
func NewRequest(name, parentID, method, url string) *Request {
	now := time.Now().UTC()
	if method == "" {
		method = "GET"
	}
	return &Request{
		ID:       NewID(KindRequest),
		Name:     name,
		ParentID: parentID,
		Method:   strings.ToUpper(method),
		URL:      url,
		Created:  now,
		Updated:  now,
	}
}

// NewEnvironment creates an environment under the given parent scope.
func NewEnvironment(name, parentID string) *Environment {
	now := time.Now().UTC()
	return &Environment{
		ID:       NewID(KindEnvironment),
		Name:     name,
		ParentID: parentID,
		Data:     make(map[string]any),
		Created:  now,
		Updated:  now,
	}
}

// FolderByID returns the folder with the given id, or nil.
func (c *Collection) FolderByID(id string) *Folder {
	for _, f := range c.Folders {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// RequestByID returns the request with the given id, or nil.
func (c *Collection) RequestByID(id string) *Request {
	for _, r := range c.Requests {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// EnvironmentByID returns the environment with the given id, or nil.
func (c *Collection) EnvironmentByID(id string) *Environment {
	for _, e := range c.Environments {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// BaseEnvironment returns the first environment parented directly to the
// workspace, or nil when the workspace has none.
func (c *Collection) BaseEnvironment() *Environment {
	if c.Workspace == nil {
		return nil
	}
	for _, e := range c.Environments {
		if e.ParentID == c.Workspace.ID {
			return e
		}
	}
	return nil
}

// Touch bumps the updated timestamp.
func (w *Workspace) Touch() { w.Updated = time.Now().UTC() }

// Touch bumps the updated timestamp.
func (f *Folder) Touch() { f.Updated = time.Now().UTC() }

// Touch bumps the updated timestamp.
func (r *Request) Touch() { r.Updated = time.Now().UTC() }

// Touch bumps the updated timestamp.
func (e *Environment) Touch() { e.Updated = time.Now().UTC() }
