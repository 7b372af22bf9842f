package engine

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single dispatch when the caller sets nothing.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow.
	DefaultMaxRedirects = 10
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool.
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host.
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool.
	DefaultIdleConnTimeout = 90 * time.Second
)

// HeaderPair is one outbound header. Headers travel as an ordered slice: the
// transport must send them as given, not reorder them through a map.
type HeaderPair struct {
	Name  string
	Value string
}

// PreparedRequest is a request after substitution and auth injection, ready
// to put on the wire.
type PreparedRequest struct {
	Method  string
	URL     string
	Headers []HeaderPair
	Body    string
}

// Response is what a Transport hands back. Multi-valued headers are joined
// with ", ".
type Response struct {
	StatusCode int
	StatusText string
	Headers    map[string]string
	Body       []byte
}

// Size returns the byte size of the response body.
func (r *Response) Size() int64 {
	return int64(len(r.Body))
}

// Transport dispatches a prepared request. Implementations return an error
// only for transport-level failures; any HTTP status is a success.
type Transport interface {
	Send(ctx context.Context, req *PreparedRequest) (*Response, error)
}

// HTTPTransport is the default Transport over net/http.
type HTTPTransport struct {
	client         *http.Client
	followRedirect bool
	maxRedirects   int
	validateSSL    bool
	proxyURL       string
}

// TransportOption configures an HTTPTransport.
type TransportOption func(*HTTPTransport)

// NewHTTPTransport builds the default transport with a pooled connection
// setup.
func NewHTTPTransport(opts ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{
		followRedirect: true,
		maxRedirects:   DefaultMaxRedirects,
		validateSSL:    true,
	}
	for _, opt := range opts {
		opt(t)
	}

	transport := &http.Transport{
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}
	if !t.validateSSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if t.proxyURL != "" {
		if proxy, err := neturl.Parse(t.proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(proxy)
		}
	}

	t.client = &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if !t.followRedirect {
				return http.ErrUseLastResponse
			}
			if len(via) >= t.maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return t
}

// WithFollowRedirects enables or disables redirect following.
func WithFollowRedirects(follow bool) TransportOption {
	return func(t *HTTPTransport) {
		t.followRedirect = follow
	}
}

// WithMaxRedirects caps how many redirects are followed.
func WithMaxRedirects(max int) TransportOption {
	return func(t *HTTPTransport) {
		t.maxRedirects = max
	}
}

// WithValidateSSL enables or disables TLS certificate validation.
func WithValidateSSL(validate bool) TransportOption {
	return func(t *HTTPTransport) {
		t.validateSSL = validate
	}
}

// WithProxy routes requests through the given proxy URL.
func WithProxy(proxyURL string) TransportOption {
	return func(t *HTTPTransport) {
		t.proxyURL = proxyURL
	}
}

func (t *HTTPTransport) Send(ctx context.Context, req *PreparedRequest) (*Response, error) {
	if err := ValidateURL(req.URL); err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	for _, h := range req.Headers {
		httpReq.Header.Add(h.Name, h.Value)
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(httpResp.Header))
	for name, values := range httpResp.Header {
		headers[name] = strings.Join(values, ", ")
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		StatusText: statusText(httpResp),
		Headers:    headers,
		Body:       respBody,
	}, nil
}

func statusText(resp *http.Response) string {
	// "200 OK" -> "OK"; fall back to the standard reason phrase.
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme.
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
