// Package api is the single HTTP pipeline every storefront call goes through.
//
// Each request marks the client busy, attaches the stored session token,
// and on failure either tears the session down (401) or surfaces one error
// notification. Callers receive an *Error and never repeat that handling.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/publicsuffix"

	"github.com/pyropark/storefront/internal/nav"
	"github.com/pyropark/storefront/internal/notify"
	"github.com/pyropark/storefront/internal/session"
	"github.com/pyropark/storefront/internal/telemetry"
)

const (
	// DefaultBaseURL is the storefront API used when nothing is configured
	DefaultBaseURL = "http://localhost:8080/api"

	// DefaultTimeout bounds a single request
	DefaultTimeout = 30 * time.Second

	// RequestIDHeader carries a per-request correlation id
	RequestIDHeader = "X-Request-ID"
)

// SessionStore is the part of the session store the pipeline needs
type SessionStore interface {
	Get() (session.Session, bool)
	Clear() error
}

// BusyTracker is told when a request starts and settles
type BusyTracker interface {
	Begin()
	End()
}

// Call describes a finished request, for diagnostics
type Call struct {
	RequestID string
	Method    string
	Path      string
	Status    int
	Duration  time.Duration
	Err       error
}

// Client is the storefront API client
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	sessions   SessionStore
	busy       BusyTracker
	notifier   notify.Notifier
	navigator  nav.Navigator
	tracer     trace.Tracer
	logger     *slog.Logger
	observe    func(Call)

	expiryMu     sync.Mutex
	expired      bool
	expiredToken string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithBusy reports request activity to b
func WithBusy(b BusyTracker) Option {
	return func(c *Client) { c.busy = b }
}

// WithNotifier sends failure and expiry messages to n
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithNavigator is used to send the user to login after session expiry
func WithNavigator(n nav.Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// WithTracer sets the tracer used for request spans
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithLogger sets the structured logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithObserver registers fn to receive every finished call
func WithObserver(fn func(Call)) Option {
	return func(c *Client) { c.observe = fn }
}

// NewClient creates a client rooted at baseURL
func NewClient(baseURL string, sessions SessionStore, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		sessions:  sessions,
		busy:      nopBusy{},
		notifier:  nopNotifier{},
		navigator: nav.NavigatorFunc(func(nav.Route) {}),
		tracer:    otel.Tracer(telemetry.InstrumentationName),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Request describes one API call
type Request struct {
	Method string
	Path   string // relative to the base URL
	Query  url.Values
	JSON   any
	// Multipart, when set, is sent instead of JSON
	Multipart *Multipart
	Header    http.Header
	// Public requests never carry the session token, so a 401 on them is an
	// ordinary failure rather than session expiry.
	Public bool
	// Fallback is shown when the failure carries no usable message
	Fallback string
}

// Multipart is a form body with an optional file
type Multipart struct {
	Fields []Field
	File   *File
}

// Field is one form value
type Field struct {
	Name  string
	Value string
}

// File is an uploaded file part
type File struct {
	Field string
	Name  string
	Data  []byte
}

// Response is a successful reply
type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	RequestID string
}

type quietKey struct{}

// WithQuiet marks ctx so failures are logged but not shown to the user.
// Session expiry is still handled.
func WithQuiet(ctx context.Context) context.Context {
	return context.WithValue(ctx, quietKey{}, true)
}

func isQuiet(ctx context.Context) bool {
	quiet, _ := ctx.Value(quietKey{}).(bool)
	return quiet
}

// Do executes req. On failure it returns an *Error after the pipeline has
// applied session expiry and notification handling.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	req.Method = method

	body, contentType, err := req.encode()
	if err != nil {
		return nil, fmt.Errorf("encode %s %s: %w", method, req.Path, err)
	}

	requestID := uuid.New().String()[:8]
	ctx, span := c.tracer.Start(ctx, "storefront.api "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", req.Path),
			attribute.String("storefront.request_id", requestID),
		))

	httpReq, err := http.NewRequestWithContext(ctx, method, c.resolve(req.Path, req.Query), body)
	if err != nil {
		telemetry.EndSpan(span, err)
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	var token string
	if !req.Public {
		if s, ok := c.sessions.Get(); ok {
			token = s.Token
			httpReq.Header.Set("Authorization", "Bearer "+token)
			c.rearmExpiry(token)
		}
	}
	for k, vs := range req.Header {
		httpReq.Header[http.CanonicalHeaderKey(k)] = vs
	}
	if req.Public {
		httpReq.Header.Del("Authorization")
	}

	start := time.Now()
	resp, apiErr := c.roundTrip(httpReq, req)
	elapsed := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.Status
		resp.RequestID = requestID
	} else if apiErr != nil {
		status = apiErr.Status
	}
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	if c.observe != nil {
		call := Call{RequestID: requestID, Method: method, Path: req.Path, Status: status, Duration: elapsed}
		if apiErr != nil {
			call.Err = apiErr
		}
		c.observe(call)
	}

	if apiErr == nil {
		telemetry.EndSpan(span, nil)
		c.logger.Debug("api call",
			"request_id", requestID,
			"method", method,
			"path", req.Path,
			"status", status,
			"duration", elapsed)
		return resp, nil
	}

	apiErr.Message = normalize(apiErr, req.Fallback)
	telemetry.EndSpan(span, apiErr)
	c.handleFailure(ctx, requestID, req.Public, token, apiErr)
	return nil, apiErr
}

// JSON executes req and decodes a JSON reply into out (if non-nil)
func (c *Client) JSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("unmarshal %s %s: %w", req.Method, req.Path, err)
	}
	return nil
}

// roundTrip performs the exchange. The busy tracker brackets only the
// network I/O, so it is idle again before any failure handling runs.
func (c *Client) roundTrip(httpReq *http.Request, req Request) (*Response, *Error) {
	c.busy.Begin()
	defer c.busy.End()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Method: req.Method, Path: req.Path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Method: req.Method, Path: req.Path, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Method: req.Method, Path: req.Path, Status: resp.StatusCode, Body: respBody}
	}

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: respBody}, nil
}

func (c *Client) handleFailure(ctx context.Context, requestID string, public bool, token string, apiErr *Error) {
	logArgs := []any{
		"request_id", requestID,
		"method", apiErr.Method,
		"path", apiErr.Path,
		"status", apiErr.Status,
		"error", apiErr.Message,
	}

	if apiErr.Status == http.StatusUnauthorized && !public {
		c.logger.Warn("api call unauthorized", logArgs...)
		c.expire(token)
		return
	}

	if isQuiet(ctx) {
		c.logger.Info("api call failed quietly", logArgs...)
		return
	}
	c.logger.Warn("api call failed", logArgs...)
	c.notifier.Notify(notify.SeverityError, apiErr.Message)
}

// expire tears down the session the rejected token belonged to. token is
// empty when the session had already lapsed locally and the request went
// out unauthenticated. Concurrent 401s for one session produce one warning
// and one navigation. A 401 for a token that has since been replaced by a
// new login is ignored.
func (c *Client) expire(token string) {
	c.expiryMu.Lock()
	if c.expired && (token == "" || token == c.expiredToken) {
		c.expiryMu.Unlock()
		return
	}
	current, ok := c.sessions.Get()
	if ok && current.Token != token {
		c.expiryMu.Unlock()
		return
	}
	c.expired = true
	if token != "" {
		c.expiredToken = token
	}
	// Clear even when Get reports absent: a lapsed session still has a
	// stored document.
	if err := c.sessions.Clear(); err != nil {
		c.logger.Error("clear expired session", "error", err)
	}
	c.expiryMu.Unlock()

	c.logger.Info("session expired")
	c.notifier.Notify(notify.SeverityWarning, SessionExpiredMessage)
	c.navigator.Navigate(nav.RouteLogin)
}

// rearmExpiry allows expiry again once a request carries a session other
// than the one last expired
func (c *Client) rearmExpiry(token string) {
	c.expiryMu.Lock()
	if c.expired && token != c.expiredToken {
		c.expired = false
	}
	c.expiryMu.Unlock()
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (r Request) encode() (io.Reader, string, error) {
	if r.Multipart != nil {
		return r.Multipart.encode()
	}
	if r.JSON == nil {
		return nil, "", nil
	}
	body, err := json.Marshal(r.JSON)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}
	return bytes.NewReader(body), "application/json", nil
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range m.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.Name, err)
		}
	}
	if m.File != nil {
		part, err := w.CreateFormFile(m.File.Field, m.File.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create file part: %w", err)
		}
		if _, err := part.Write(m.File.Data); err != nil {
			return nil, "", fmt.Errorf("write file part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

type nopBusy struct{}

func (nopBusy) Begin() {}
func (nopBusy) End()   {}

type nopNotifier struct{}

func (nopNotifier) Notify(notify.Severity, string) {}
