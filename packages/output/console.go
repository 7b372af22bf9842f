package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/quiverhq/quiver/packages/engine"
	"github.com/quiverhq/quiver/packages/environ"
	"github.com/quiverhq/quiver/packages/history"
	"github.com/quiverhq/quiver/packages/model"
)

const bodyPreviewLimit = 2048

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// statusPainter picks a color by status class. Non-2xx responses are
// still successful sends, the color only signals the class at a glance.
func statusPainter(code int) func(a ...interface{}) string {
	switch {
	case code >= 500:
		return color.New(color.FgRed).SprintFunc()
	case code >= 300:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgGreen).SprintFunc()
	}
}

func (f *ConsoleFormatter) FormatResult(result *engine.Result) {
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	name := result.Request.Name
	if name == "" {
		name = result.Request.URL
	}
	fmt.Fprintf(f.writer, "%s %s %s\n", bold(result.Request.Method), name, cyan(fmt.Sprintf("(%dms)", result.Outcome.Duration.Milliseconds())))

	if result.Outcome.Err != nil {
		fmt.Fprintf(f.writer, "  %s %v\n", red("x"), result.Outcome.Err)
		return
	}

	resp := result.Outcome.Response
	paint := statusPainter(resp.StatusCode)
	fmt.Fprintf(f.writer, "  %s %s\n", paint(fmt.Sprintf("%d", resp.StatusCode)), resp.StatusText)

	if f.verbose {
		keys := make([]string, 0, len(resp.Headers))
		for k := range resp.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(f.writer, "  %s: %s\n", k, resp.Headers[k])
		}
	}

	if len(resp.Body) > 0 {
		body := string(resp.Body)
		if !f.verbose && len(body) > bodyPreviewLimit {
			body = body[:bodyPreviewLimit] + "..."
		}
		fmt.Fprintf(f.writer, "\n%s\n", body)
	}
}

// FormatWarnings prints resolution warnings to stderr so they never mix
// with response bodies on stdout.
func (f *ConsoleFormatter) FormatWarnings(warnings []environ.Warning) {
	yellow := color.New(color.FgYellow).SprintFunc()
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "%s %s\n", yellow("warning:"), w.Message)
	}
}

func (f *ConsoleFormatter) FormatHistory(req *model.Request, entries []model.Execution) {
	bold := color.New(color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s %s\n", bold(req.Method), req.Name, req.URL)
	if len(entries) == 0 {
		fmt.Fprintf(f.writer, "  no executions recorded\n")
		return
	}
	for _, e := range entries {
		stamp := e.ExecutedAt.Format("2006-01-02 15:04:05")
		if e.Error != nil {
			fmt.Fprintf(f.writer, "  %s %s %s\n", stamp, red("error"), e.Error.Message)
			continue
		}
		paint := statusPainter(e.Response.StatusCode)
		fmt.Fprintf(f.writer, "  %s %s %s %s\n", stamp,
			paint(fmt.Sprintf("%d", e.Response.StatusCode)),
			cyan(fmt.Sprintf("%dms", e.Response.DurationMs)),
			formatSize(e.Response.Size))
	}
}

func (f *ConsoleFormatter) FormatStats(requestID string, stats *history.Stats) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("Stats:"), requestID)
	fmt.Fprintf(f.writer, "  Count:  %d\n", stats.Count)
	fmt.Fprintf(f.writer, "  Errors: %d\n", stats.Errors)
	if stats.Count == 0 {
		return
	}
	fmt.Fprintf(f.writer, "  Min:    %dms\n", stats.Min.Milliseconds())
	fmt.Fprintf(f.writer, "  Mean:   %dms\n", stats.Mean.Milliseconds())
	fmt.Fprintf(f.writer, "  P50:    %dms\n", stats.P50.Milliseconds())
	fmt.Fprintf(f.writer, "  P90:    %dms\n", stats.P90.Milliseconds())
	fmt.Fprintf(f.writer, "  P95:    %dms\n", stats.P95.Milliseconds())
	fmt.Fprintf(f.writer, "  P99:    %dms\n", stats.P99.Milliseconds())
	fmt.Fprintf(f.writer, "  Max:    %dms\n", stats.Max.Milliseconds())
}

// FormatTree prints the workspace hierarchy with folders nested under
// their parents and requests as leaves.
func (f *ConsoleFormatter) FormatTree(col *model.Collection) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s\n", bold(col.Workspace.Name), faint(col.Workspace.ID))

	childFolders := make(map[string][]*model.Folder)
	for _, fld := range col.Folders {
		childFolders[fld.ParentID] = append(childFolders[fld.ParentID], fld)
	}
	childRequests := make(map[string][]*model.Request)
	for _, req := range col.Requests {
		childRequests[req.ParentID] = append(childRequests[req.ParentID], req)
	}

	var walk func(parentID, indent string)
	walk = func(parentID, indent string) {
		for _, fld := range childFolders[parentID] {
			fmt.Fprintf(f.writer, "%s%s/ %s\n", indent, fld.Name, faint(fld.ID))
			walk(fld.ID, indent+"  ")
		}
		for _, req := range childRequests[parentID] {
			fmt.Fprintf(f.writer, "%s%s %s %s\n", indent, cyan(req.Method), req.Name, faint(req.ID))
		}
	}
	walk(col.Workspace.ID, "  ")

	for _, env := range col.Environments {
		fmt.Fprintf(f.writer, "  [env] %s %s\n", env.Name, faint(env.ID))
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("quiver"), version)
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%dB", size)
	}
}
