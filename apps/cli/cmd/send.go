package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/quiverhq/quiver/packages/core/config"
	"github.com/quiverhq/quiver/packages/engine"
	"github.com/quiverhq/quiver/packages/environ"
	"github.com/quiverhq/quiver/packages/history"
	"github.com/quiverhq/quiver/packages/output"
	"github.com/quiverhq/quiver/packages/schema"
	"github.com/quiverhq/quiver/packages/store"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <request-id>",
	Short: "Execute a stored request",
	Long: `Execute a stored request. Variables are resolved from the layered
environment chain before substitution: global environment, base
environment, the selected sub-environment, folder variables from root
to leaf, then --var overrides. Unresolved {{placeholders}} pass through
verbatim and are reported as warnings.

A response with any status code counts as a successful send; only
transport failures (connection refused, timeout, unknown host) exit
non-zero.

Examples:
  quiver send req_abc123
  quiver send req_abc123 --env env_staging
  quiver send req_abc123 --var token=xyz --var baseUrl=http://localhost:8080
  quiver send req_abc123 --repeat 10 --rate 2
  quiver send req_abc123 --schema response.schema.json
  quiver send req_abc123 --watch`,
	Args: cobra.ExactArgs(1),
	RunE: sendCommand,
}

var (
	sendEnvFlag      string
	sendVarFlags     []string
	sendVarFileFlag  string
	sendTimeoutFlag  string
	sendInsecureFlag bool
	sendProxyFlag    string
	sendRepeatFlag   int
	sendRateFlag     float64
	sendSchemaFlag   string
	sendWatchFlag    bool
	sendOutputFlag   string
	sendVerboseFlag  bool
	sendDryRunFlag   bool
)

func init() {
	sendCmd.Flags().StringVarP(&sendEnvFlag, "env", "e", getEnvString("QUIVER_ENV", ""), "Sub-environment id to resolve against (env: QUIVER_ENV)")
	sendCmd.Flags().StringArrayVar(&sendVarFlags, "var", nil, "Override variable key=value (repeatable, highest precedence)")
	sendCmd.Flags().StringVar(&sendVarFileFlag, "var-file", "", "YAML or JSON file of override variables")
	sendCmd.Flags().StringVar(&sendTimeoutFlag, "timeout", "", "Request timeout (e.g., 30s, 1m)")
	sendCmd.Flags().BoolVarP(&sendInsecureFlag, "insecure", "k", getEnvBool("QUIVER_INSECURE", false), "Disable SSL certificate validation (env: QUIVER_INSECURE)")
	sendCmd.Flags().StringVar(&sendProxyFlag, "proxy", getEnvString("QUIVER_PROXY", ""), "Proxy URL (env: QUIVER_PROXY)")
	sendCmd.Flags().IntVar(&sendRepeatFlag, "repeat", getEnvInt("QUIVER_REPEAT", 1), "Number of executions (env: QUIVER_REPEAT)")
	sendCmd.Flags().Float64Var(&sendRateFlag, "rate", 0, "Cap repeated executions per second")
	sendCmd.Flags().StringVar(&sendSchemaFlag, "schema", "", "Validate the response body against a JSON Schema file")
	sendCmd.Flags().BoolVarP(&sendWatchFlag, "watch", "w", false, "Re-send whenever the owning collection changes on disk")
	sendCmd.Flags().StringVarP(&sendOutputFlag, "output", "o", getEnvString("QUIVER_OUTPUT", "console"), "Output format: console, json (env: QUIVER_OUTPUT)")
	sendCmd.Flags().BoolVarP(&sendVerboseFlag, "verbose", "v", false, "Print response headers")
	sendCmd.Flags().BoolVar(&sendDryRunFlag, "dry-run", false, "Resolve and prepare the request without sending it")
}

func sendCommand(cmd *cobra.Command, args []string) error {
	requestID := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}

	eng, cleanup, err := buildEngine(cfg, st)
	if err != nil {
		return err
	}
	defer cleanup()

	opts, err := buildExecuteOptions()
	if err != nil {
		return err
	}

	console := output.NewConsoleFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithNoColor(colorDisabled(cfg)),
		output.WithVerbose(sendVerboseFlag),
	)
	jsonOut := output.NewJSONFormatter(output.JSONWithWriter(cmd.OutOrStdout()))

	if sendDryRunFlag {
		return dryRun(cmd, st, eng, console, requestID, opts)
	}

	emit := func(result *engine.Result) error {
		console.FormatWarnings(result.Warnings)
		if strings.ToLower(sendOutputFlag) == "json" {
			return jsonOut.FormatResult(result)
		}
		console.FormatResult(result)
		return nil
	}

	sendOnce := func(ctx context.Context) (failed bool, err error) {
		if sendRepeatFlag > 1 {
			results, err := eng.ExecuteRepeat(ctx, requestID, opts, engine.RepeatOptions{
				Count: sendRepeatFlag,
				Rate:  sendRateFlag,
			})
			for _, result := range results {
				if emitErr := emit(result); emitErr != nil {
					return failed, emitErr
				}
				if result.Outcome.Failed() {
					failed = true
				}
			}
			return failed, err
		}

		result, err := eng.ExecuteByID(ctx, requestID, opts)
		if err != nil {
			return false, err
		}
		if err := emit(result); err != nil {
			return false, err
		}
		if result.Outcome.Failed() {
			return true, nil
		}
		if sendSchemaFlag != "" && result.Outcome.Response != nil {
			return validateSchema(cmd, result.Outcome.Response.Body)
		}
		return false, nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	failed, err := sendOnce(ctx)
	if err != nil {
		return err
	}

	if !sendWatchFlag {
		if failed {
			os.Exit(ExitSendFailure)
		}
		return nil
	}

	// Watch mode re-sends when the owning collection file changes.
	colID, _, err := findCollectionOf(st, requestID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching %s for changes... (press Ctrl+C to stop)\n\n", colID)
	err = st.Watch(ctx, func(changedID string) {
		if changedID != colID {
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nCollection changed, re-sending...\n\n")
		if _, err := sendOnce(ctx); err != nil {
			console.FormatError(err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// buildEngine wires the store, transport, and history recorder from the
// effective configuration. The returned cleanup closes the archive.
func buildEngine(cfg *config.Config, st *store.FileStore) (*engine.Engine, func(), error) {
	transportOpts := []engine.TransportOption{
		engine.WithFollowRedirects(cfg.GetFollowRedirects()),
		engine.WithValidateSSL(cfg.GetValidateSSL() && !sendInsecureFlag),
	}
	if cfg.MaxRedirects > 0 {
		transportOpts = append(transportOpts, engine.WithMaxRedirects(cfg.MaxRedirects))
	}
	proxy := cfg.Proxy
	if sendProxyFlag != "" {
		proxy = sendProxyFlag
	}
	if proxy != "" {
		transportOpts = append(transportOpts, engine.WithProxy(proxy))
	}

	executorOpts := []engine.ExecutorOption{}
	if sendTimeoutFlag != "" {
		d, err := time.ParseDuration(sendTimeoutFlag)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", sendTimeoutFlag, err)
		}
		executorOpts = append(executorOpts, engine.WithTimeout(d))
	} else if cfg.Timeout > 0 {
		executorOpts = append(executorOpts, engine.WithTimeout(time.Duration(cfg.Timeout)*time.Millisecond))
	}

	executor := engine.NewExecutor(engine.NewHTTPTransport(transportOpts...), executorOpts...)

	recorderOpts := []history.RecorderOption{}
	if cfg.HistoryLimit > 0 {
		recorderOpts = append(recorderOpts, history.WithLimit(cfg.HistoryLimit))
	}
	cleanup := func() {}
	if cfg.ArchivePath != "" {
		archive, err := history.OpenArchive(cfg.ArchivePath)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open execution archive: %w", err)
		}
		recorderOpts = append(recorderOpts, history.WithArchive(archive))
		cleanup = func() { _ = archive.Close() }
	}
	recorder := history.NewRecorder(st, recorderOpts...)

	eng := engine.New(st,
		engine.WithExecutor(executor),
		engine.WithHook(recorder.Hook()),
	)
	return eng, cleanup, nil
}

func buildExecuteOptions() (engine.ExecuteOptions, error) {
	opts := engine.ExecuteOptions{EnvironmentID: sendEnvFlag}

	if sendVarFileFlag != "" {
		fileVars, err := environ.LoadVarFile(sendVarFileFlag)
		if err != nil {
			return opts, err
		}
		opts.Overrides = fileVars
	}

	flagVars, err := parsePairs(sendVarFlags)
	if err != nil {
		return opts, err
	}
	if len(flagVars) > 0 {
		if opts.Overrides == nil {
			opts.Overrides = make(map[string]any, len(flagVars))
		}
		for k, v := range flagVars {
			opts.Overrides[k] = v
		}
	}
	return opts, nil
}

// dryRun resolves variables and prepares the request without touching the
// network, showing exactly what a real send would transmit.
func dryRun(cmd *cobra.Command, st *store.FileStore, eng *engine.Engine, console *output.ConsoleFormatter, requestID string, opts engine.ExecuteOptions) error {
	colID, col, err := findCollectionOf(st, requestID)
	if err != nil {
		return err
	}
	req := col.RequestByID(requestID)
	if req == nil {
		return fmt.Errorf("no request with id %q", requestID)
	}

	vars, warnings, err := eng.MergeVariables(colID, req.ParentID, opts)
	if err != nil {
		return err
	}
	console.FormatWarnings(warnings)

	prepared, body := engine.Prepare(req, vars)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", prepared.Method, prepared.URL)
	for _, h := range prepared.Headers {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", h.Name, h.Value)
	}
	if prepared.Body != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", prepared.Body)
		if body.Fallback {
			fmt.Fprintln(os.Stderr, "warning: body is not valid JSON, sending as-is")
		}
	}
	return nil
}

func validateSchema(cmd *cobra.Command, body []byte) (failed bool, err error) {
	result, err := schema.ValidateFile(sendSchemaFlag, body)
	if err != nil {
		return false, err
	}
	if result.Valid {
		fmt.Fprintf(cmd.OutOrStdout(), "Schema: valid\n")
		return false, nil
	}
	for _, msg := range result.Errors {
		fmt.Fprintf(os.Stderr, "schema: %s\n", msg)
	}
	return true, nil
}
