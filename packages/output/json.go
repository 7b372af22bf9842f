package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/quiverhq/quiver/packages/engine"
	"github.com/quiverhq/quiver/packages/environ"
	"github.com/quiverhq/quiver/packages/model"
)

// JSONExecution is the machine-readable shape of a single send.
type JSONExecution struct {
	RequestID  string            `json:"requestId"`
	Method     string            `json:"method"`
	URL        string            `json:"url"`
	ExecutedAt string            `json:"executedAt"`
	Duration   float64           `json:"duration"`
	StatusCode int               `json:"statusCode,omitempty"`
	StatusText string            `json:"statusText,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body,omitempty"`
	Size       int64             `json:"size,omitempty"`
	Error      string            `json:"error,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
}

// JSONFormatter writes results as indented JSON for scripting.
type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *engine.Result) error {
	out := JSONExecution{
		RequestID:  result.Request.ID,
		Method:     result.Request.Method,
		URL:        result.Request.URL,
		ExecutedAt: result.Outcome.StartedAt.Format(time.RFC3339),
		Duration:   float64(result.Outcome.Duration.Milliseconds()),
		Warnings:   warningMessages(result.Warnings),
	}
	if result.Outcome.Err != nil {
		out.Error = result.Outcome.Err.Error()
	} else {
		resp := result.Outcome.Response
		out.StatusCode = resp.StatusCode
		out.StatusText = resp.StatusText
		out.Headers = resp.Headers
		out.Body = string(resp.Body)
		out.Size = resp.Size()
	}
	return f.encode(out)
}

func (f *JSONFormatter) FormatHistory(req *model.Request, entries []model.Execution) error {
	return f.encode(map[string]any{
		"requestId":  req.ID,
		"method":     req.Method,
		"url":        req.URL,
		"executions": entries,
	})
}

func (f *JSONFormatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func warningMessages(warnings []environ.Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	msgs := make([]string, len(warnings))
	for i, w := range warnings {
		msgs[i] = w.Message
	}
	return msgs
}
