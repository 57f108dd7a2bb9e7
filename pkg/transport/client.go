// Package transport is the authenticated HTTP client every effect handler goes
// through. Reads send query parameters, writes send a JSON body, and failures
// come back as *HTTPError or *NetworkError so callers never sniff shapes.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const tracerName = "github.com/go-go-golems/pickem/pkg/transport"

// Request is one backend call. Params go to the query string for GET and
// DELETE; Body is JSON-encoded for POST, PUT and PATCH.
type Request struct {
	Method string
	Path   string
	Params map[string]string
	Body   any
}

type Response struct {
	Status int
	Body   json.RawMessage
}

// Doer performs a single request. Implementations must be safe for concurrent use.
type Doer interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// TokenSource supplies the bearer token for each call. An empty token sends no
// Authorization header.
type TokenSource interface {
	Token() string
}

type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	UserAgent  string

	limiter *rate.Limiter
	logger  zerolog.Logger
	tracer  trace.Tracer
}

type Option func(*Client)

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.Tokens = ts }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.HTTPClient.Timeout = d
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// WithRateLimit throttles outgoing calls to rps with the given burst. A
// non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		UserAgent: "pickem",
		logger:    zerolog.Nop(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}

	ctx, span := c.tracer.Start(ctx, method+" "+r.Path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", r.Path),
	)

	resp, err := c.do(ctx, method, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))
	return resp, nil
}

func (c *Client) do(ctx context.Context, method string, r Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Method: method, Path: r.Path, Err: errors.Wrap(err, "rate limit")}
		}
	}

	u, err := c.url(method, r)
	if err != nil {
		return nil, &NetworkError{Method: method, Path: r.Path, Err: err}
	}

	var reader io.Reader
	if r.Body != nil && hasBody(method) {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, &NetworkError{Method: method, Path: r.Path, Err: errors.Wrap(err, "marshal body")}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, &NetworkError{Method: method, Path: r.Path, Err: errors.Wrap(err, "build request")}
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	rid := uuid.NewString()
	req.Header.Set("X-Request-ID", rid)
	if c.Tokens != nil {
		if tok := c.Tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	started := time.Now()
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		err = stripURL(err)
		c.logger.Debug().Err(err).Str("method", method).Str("path", r.Path).Str("request_id", rid).Msg("request failed")
		return nil, &NetworkError{Method: method, Path: r.Path, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &NetworkError{Method: method, Path: r.Path, Err: errors.Wrap(err, "read body")}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", r.Path).
		Str("request_id", rid).
		Int("status", res.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("request done")

	if res.StatusCode >= 400 {
		he := &HTTPError{Method: method, Path: r.Path, Status: res.StatusCode, Raw: b}
		var body ErrorBody
		if json.Unmarshal(b, &body) == nil {
			he.Body = body
		}
		return nil, he
	}

	if len(bytes.TrimSpace(b)) == 0 || !json.Valid(b) {
		b = []byte("null")
	}
	return &Response{Status: res.StatusCode, Body: json.RawMessage(b)}, nil
}

func (c *Client) url(method string, r Request) (string, error) {
	path := r.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return "", errors.Wrapf(err, "parse url %q", c.BaseURL+path)
	}
	if len(r.Params) > 0 && !hasBody(method) {
		q := u.Query()
		for k, v := range r.Params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// stripURL drops the request URL from an *url.Error; its query can carry
// one-time codes.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return errors.Wrap(ue.Err, strings.ToLower(ue.Op))
	}
	return err
}

// Path joins segments into an absolute request path, escaping each one so an
// id can never add segments, a query or a fragment.
func Path(segments ...string) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteByte('/')
		switch seg {
		case ".":
			b.WriteString("%2E")
		case "..":
			b.WriteString("%2E%2E")
		default:
			b.WriteString(url.PathEscape(seg))
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
