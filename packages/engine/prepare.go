package engine

import (
	"encoding/base64"
	neturl "net/url"
	"strings"

	"github.com/quiverhq/quiver/packages/model"
	"github.com/quiverhq/quiver/packages/template"
)

// Prepare applies variable substitution, query parameters, authentication,
// and body handling to a request definition. Disabled headers and parameters
// are dropped entirely, never substituted.
func Prepare(req *model.Request, vars map[string]any) (*PreparedRequest, PreparedBody) {
	prepared := &PreparedRequest{
		Method: strings.ToUpper(req.Method),
		URL:    template.Substitute(req.URL, vars),
	}

	for _, h := range req.Headers {
		if h.Disabled {
			continue
		}
		prepared.Headers = append(prepared.Headers, HeaderPair{
			Name:  h.Name,
			Value: template.Substitute(h.Value, vars),
		})
	}

	body := prepareBody(req.Body, vars)
	prepared.Body = body.Payload
	if body.ContentType != "" && !hasHeader(prepared.Headers, "Content-Type") {
		prepared.Headers = append(prepared.Headers, HeaderPair{Name: "Content-Type", Value: body.ContentType})
	}

	applyAuth(prepared, req.Auth, vars)
	prepared.URL = appendQuery(prepared.URL, req.Params, vars)

	return prepared, body
}

// applyAuth injects the Authorization header for the auth types the engine
// handles itself. Anything else is assumed to already be encoded as headers.
func applyAuth(prepared *PreparedRequest, auth *model.Auth, vars map[string]any) {
	if auth == nil {
		return
	}
	switch auth.Type {
	case model.AuthBearer:
		token := template.Substitute(auth.Token, vars)
		setHeader(prepared, "Authorization", "Bearer "+token)
	case model.AuthBasic:
		user := template.Substitute(auth.Username, vars)
		pass := template.Substitute(auth.Password, vars)
		encoded := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
		setHeader(prepared, "Authorization", "Basic "+encoded)
	}
}

// appendQuery adds the enabled, substituted query parameters to the URL in
// their defined order.
func appendQuery(url string, params []model.QueryParam, vars map[string]any) string {
	var sb strings.Builder
	for _, p := range params {
		if p.Disabled {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(neturl.QueryEscape(template.Substitute(p.Name, vars)))
		sb.WriteByte('=')
		sb.WriteString(neturl.QueryEscape(template.Substitute(p.Value, vars)))
	}
	if sb.Len() == 0 {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + sb.String()
}

func hasHeader(headers []HeaderPair, name string) bool {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}

// setHeader replaces an existing header of the same name or appends one.
func setHeader(prepared *PreparedRequest, name, value string) {
	for i, h := range prepared.Headers {
		if strings.EqualFold(h.Name, name) {
			prepared.Headers[i].Value = value
			return
		}
	}
	prepared.Headers = append(prepared.Headers, HeaderPair{Name: name, Value: value})
}
