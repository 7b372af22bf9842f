package engine

import (
	"encoding/json"
	neturl "net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/quiverhq/quiver/packages/model"
	"github.com/quiverhq/quiver/packages/template"
)

// PreparedBody is the outcome of templating a request body. Templated JSON
// may be invalid until every variable resolves, so a failed parse is not an
// error: the substituted text ships as-is and Fallback records that the
// parsed path was not taken.
type PreparedBody struct {
	// Payload is the exact byte content to send.
	Payload string
	// ContentType is set when the body implies one and the request has not
	// configured its own Content-Type header.
	ContentType string
	// JSON reports that Payload is known-valid JSON.
	JSON bool
	// Fallback reports that a JSON or GraphQL-variables parse failed and the
	// raw substituted text was kept.
	Fallback bool
}

func prepareBody(body *model.Body, vars map[string]any) PreparedBody {
	if body == nil {
		return PreparedBody{}
	}

	if body.GraphQL != nil {
		return prepareGraphQL(body.GraphQL, vars)
	}
	if len(body.Form) > 0 || body.MimeType == model.MimeForm {
		return prepareForm(body.Form, vars)
	}

	text := template.Substitute(body.Text, vars)
	prepared := PreparedBody{Payload: text, ContentType: body.MimeType}

	if body.MimeType == model.MimeJSON || body.MimeType == model.MimeGraphQL {
		if gjson.Valid(text) {
			prepared.JSON = true
		} else if text != "" {
			prepared.Fallback = true
		}
	}
	return prepared
}

// prepareGraphQL restructures a GraphQL body into {query, variables} with
// the variables parsed from their own substituted JSON text. Unparseable
// variables collapse to an empty object rather than aborting.
func prepareGraphQL(gql *model.GraphQLBody, vars map[string]any) PreparedBody {
	query := template.Substitute(gql.Query, vars)
	variablesText := strings.TrimSpace(template.Substitute(gql.Variables, vars))

	variables := map[string]any{}
	fallback := false
	if variablesText != "" {
		if err := json.Unmarshal([]byte(variablesText), &variables); err != nil {
			variables = map[string]any{}
			fallback = true
		}
	}

	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		// Only reachable with non-serializable variable values; keep the
		// query alone rather than dropping the request.
		payload = []byte(`{"query":` + quoteJSON(query) + `,"variables":{}}`)
		fallback = true
	}

	return PreparedBody{
		Payload:     string(payload),
		ContentType: model.MimeJSON,
		JSON:        true,
		Fallback:    fallback,
	}
}

func prepareForm(fields []model.FormField, vars map[string]any) PreparedBody {
	var sb strings.Builder
	for _, field := range fields {
		if field.Disabled {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(neturl.QueryEscape(template.Substitute(field.Name, vars)))
		sb.WriteByte('=')
		sb.WriteString(neturl.QueryEscape(template.Substitute(field.Value, vars)))
	}
	return PreparedBody{Payload: sb.String(), ContentType: model.MimeForm}
}

func quoteJSON(s string) string {
	quoted, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(quoted)
}
