package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/quiverhq/quiver/packages/model"
	"github.com/spf13/cobra"
)

var (
	requestMethodFlag   string
	requestURLFlag      string
	requestBodyFlag     string
	requestBodyFileFlag string
	requestMimeFlag     string
	requestGraphQLFlag  string
	requestGQLVarsFlag  string
	requestFormFlags    []string
	requestHeaderFlags  []string
	requestQueryFlags   []string
	requestAuthFlag     string
	requestTokenFlag    string
	requestUserFlag     string
	requestPassFlag     string
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Manage requests",
	Long: `Manage HTTP request definitions. URLs, headers, query parameters,
and bodies may all contain {{key}} placeholders resolved at send time.

Examples:
  quiver request create wrk_abc123 "List users" --method GET --url "{{baseUrl}}/users"
  quiver request create fld_abc123 "Create user" -X POST -u "{{baseUrl}}/users" \
      --body '{"name": "{{name}}"}' --type application/json
  quiver request create wrk_abc123 "Search" -X POST -u "{{baseUrl}}/graphql" \
      --graphql 'query { users { id } }'
  quiver request update req_abc123 --url "{{baseUrl}}/v2/users"
  quiver request show req_abc123
  quiver request delete req_abc123`,
}

var requestCreateCmd = &cobra.Command{
	Use:   "create <parent-id> <name>",
	Short: "Create a request under a workspace or folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		colID, _, err := findCollectionOf(st, args[0])
		if err != nil {
			return err
		}

		req := model.NewRequest(args[1], args[0], requestMethodFlag, requestURLFlag)
		if err := applyRequestFlags(cmd, req); err != nil {
			return err
		}

		err = st.Update(colID, func(col *model.Collection) error {
			col.Requests = append(col.Requests, req)
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", req.ID)
		return nil
	},
}

var requestUpdateCmd = &cobra.Command{
	Use:   "update <request-id>",
	Short: "Update fields of an existing request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		colID, _, err := findCollectionOf(st, args[0])
		if err != nil {
			return err
		}

		return st.Update(colID, func(col *model.Collection) error {
			req := col.RequestByID(args[0])
			if req == nil {
				return fmt.Errorf("no request with id %q", args[0])
			}
			if cmd.Flags().Changed("method") {
				req.Method = strings.ToUpper(requestMethodFlag)
			}
			if cmd.Flags().Changed("url") {
				req.URL = requestURLFlag
			}
			if err := applyRequestFlags(cmd, req); err != nil {
				return err
			}
			req.Touch()
			return nil
		})
	},
}

var requestShowCmd = &cobra.Command{
	Use:   "show <request-id>",
	Short: "Print a request definition as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		_, col, err := findCollectionOf(st, args[0])
		if err != nil {
			return err
		}
		req := col.RequestByID(args[0])
		if req == nil {
			return fmt.Errorf("no request with id %q", args[0])
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(req)
	},
}

var requestDeleteCmd = &cobra.Command{
	Use:   "delete <request-id>",
	Short: "Delete a request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		colID, _, err := findCollectionOf(st, args[0])
		if err != nil {
			return err
		}

		return st.Update(colID, func(col *model.Collection) error {
			if col.RequestByID(args[0]) == nil {
				return fmt.Errorf("no request with id %q", args[0])
			}
			col.Requests = filterRequests(col.Requests, map[string]bool{args[0]: true})
			return nil
		})
	},
}

// applyRequestFlags copies body, header, query, and auth flags onto the
// request. Only flags the caller actually set are applied, so update
// leaves untouched fields alone.
func applyRequestFlags(cmd *cobra.Command, req *model.Request) error {
	if cmd.Flags().Changed("body") || cmd.Flags().Changed("body-file") || cmd.Flags().Changed("type") {
		text := requestBodyFlag
		if requestBodyFileFlag != "" {
			data, err := os.ReadFile(requestBodyFileFlag)
			if err != nil {
				return fmt.Errorf("cannot read body file: %w", err)
			}
			text = string(data)
		}
		mime := requestMimeFlag
		if mime == "" {
			mime = model.MimeJSON
		}
		req.Body = &model.Body{MimeType: mime, Text: text}
	}

	if cmd.Flags().Changed("graphql") {
		req.Body = &model.Body{
			MimeType: model.MimeGraphQL,
			GraphQL:  &model.GraphQLBody{Query: requestGraphQLFlag, Variables: requestGQLVarsFlag},
		}
	}

	if cmd.Flags().Changed("form") {
		fields := make([]model.FormField, 0, len(requestFormFlags))
		for _, pair := range requestFormFlags {
			key, value, ok := strings.Cut(pair, "=")
			if !ok || key == "" {
				return fmt.Errorf("invalid form field %q (expected key=value)", pair)
			}
			fields = append(fields, model.FormField{Name: key, Value: value})
		}
		req.Body = &model.Body{MimeType: model.MimeForm, Form: fields}
	}

	if cmd.Flags().Changed("header") {
		headers := make([]model.Header, 0, len(requestHeaderFlags))
		for _, raw := range requestHeaderFlags {
			name, value, ok := strings.Cut(raw, ":")
			if !ok || strings.TrimSpace(name) == "" {
				return fmt.Errorf("invalid header %q (expected Name: Value)", raw)
			}
			headers = append(headers, model.Header{
				Name:  strings.TrimSpace(name),
				Value: strings.TrimSpace(value),
			})
		}
		req.Headers = headers
	}

	if cmd.Flags().Changed("query") {
		params := make([]model.QueryParam, 0, len(requestQueryFlags))
		for _, pair := range requestQueryFlags {
			key, value, ok := strings.Cut(pair, "=")
			if !ok || key == "" {
				return fmt.Errorf("invalid query parameter %q (expected key=value)", pair)
			}
			params = append(params, model.QueryParam{Name: key, Value: value})
		}
		req.Params = params
	}

	if cmd.Flags().Changed("auth") {
		switch model.AuthType(requestAuthFlag) {
		case model.AuthBearer:
			req.Auth = &model.Auth{Type: model.AuthBearer, Token: requestTokenFlag}
		case model.AuthBasic:
			req.Auth = &model.Auth{Type: model.AuthBasic, Username: requestUserFlag, Password: requestPassFlag}
		case "none":
			req.Auth = nil
		default:
			return fmt.Errorf("unsupported auth type %q (expected bearer, basic, or none)", requestAuthFlag)
		}
	}

	return nil
}

func requestFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&requestMethodFlag, "method", "X", "GET", "HTTP method")
	cmd.Flags().StringVarP(&requestURLFlag, "url", "u", "", "Request URL, may contain {{placeholders}}")
	cmd.Flags().StringVar(&requestBodyFlag, "body", "", "Raw body text")
	cmd.Flags().StringVar(&requestBodyFileFlag, "body-file", "", "Read body text from a file")
	cmd.Flags().StringVar(&requestMimeFlag, "type", "", "Body MIME type (default application/json)")
	cmd.Flags().StringVar(&requestGraphQLFlag, "graphql", "", "GraphQL query text")
	cmd.Flags().StringVar(&requestGQLVarsFlag, "graphql-vars", "", "GraphQL variables as JSON text")
	cmd.Flags().StringArrayVar(&requestFormFlags, "form", nil, "Form field key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&requestHeaderFlags, "header", "H", nil, "Header \"Name: Value\" (repeatable)")
	cmd.Flags().StringArrayVar(&requestQueryFlags, "query", nil, "Query parameter key=value (repeatable)")
	cmd.Flags().StringVar(&requestAuthFlag, "auth", "", "Auth type: bearer, basic, none")
	cmd.Flags().StringVar(&requestTokenFlag, "token", "", "Bearer token")
	cmd.Flags().StringVar(&requestUserFlag, "username", "", "Basic auth username")
	cmd.Flags().StringVar(&requestPassFlag, "password", "", "Basic auth password")
}

func init() {
	requestFlags(requestCreateCmd)
	requestFlags(requestUpdateCmd)

	requestCmd.AddCommand(requestCreateCmd)
	requestCmd.AddCommand(requestUpdateCmd)
	requestCmd.AddCommand(requestShowCmd)
	requestCmd.AddCommand(requestDeleteCmd)
}
