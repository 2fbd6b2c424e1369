package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Request describes a single call against the backend.
type Request struct {
	Method string // defaults to GET
	Path   string
	Body   any // serialised to JSON when non-nil
	Header http.Header
}

// Transport performs one request and decodes the JSON response into dest.
// A nil dest skips decoding.
type Transport interface {
	Do(ctx context.Context, req Request, dest any) error
}

// Ensure HTTPTransport implements Transport at compile time.
var _ Transport = (*HTTPTransport)(nil)

const (
	// DefaultBaseURL is used when no origin is configured.
	DefaultBaseURL   = "https://auto-posting-backend-production.up.railway.app"
	defaultUserAgent = "postpilot/0.1"
	requestTimeout   = 15 * time.Second
	maxErrorBody     = 512
)

// HTTPTransport talks to the automation backend over HTTP.
type HTTPTransport struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
	logger    *log.Logger
}

// TransportOption customises an HTTPTransport.
type TransportOption func(*HTTPTransport)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		if c != nil {
			t.http = c
		}
	}
}

// WithTimeout sets the per-request timeout on the default client.
func WithTimeout(d time.Duration) TransportOption {
	return func(t *HTTPTransport) {
		if d > 0 {
			t.http.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables limiting.
func WithRateLimit(perSecond float64) TransportOption {
	return func(t *HTTPTransport) {
		if perSecond > 0 {
			t.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l *log.Logger) TransportOption {
	return func(t *HTTPTransport) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewHTTPTransport builds a transport rooted at baseURL.
func NewHTTPTransport(baseURL string, opts ...TransportOption) (*HTTPTransport, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	t := &HTTPTransport{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// BaseURL returns the configured origin.
func (t *HTTPTransport) BaseURL() string {
	return t.baseURL.String()
}

// Do issues req and decodes a 2xx body into dest.
func (t *HTTPTransport) Do(ctx context.Context, req Request, dest any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	endpoint := method + " " + req.Path

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode request %s: %w", endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return &NetworkError{Endpoint: endpoint, Err: err}
		}
	}

	reqURL := t.baseURL.ResolveReference(&url.URL{Path: req.Path})
	httpReq, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", t.userAgent)
	httpReq.Header.Set("X-Request-ID", uuid.New().String())
	for key, values := range req.Header {
		httpReq.Header.Del(key)
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	started := time.Now()
	resp, err := t.http.Do(httpReq)
	if err != nil {
		t.logger.Debug("request failed", "endpoint", endpoint, "err", err)
		return &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	t.logger.Debug("request", "endpoint", endpoint, "status", resp.StatusCode,
		"elapsed", time.Since(started).Round(time.Millisecond), "request_id", httpReq.Header.Get("X-Request-ID"))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{Endpoint: endpoint, Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if dest == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &DecodeError{Endpoint: endpoint, Err: err}
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
