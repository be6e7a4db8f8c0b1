// Package client is the typed HTTP client for the marketplace API. It is the
// only package that knows request paths, headers and status codes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/erazemk/resell/internal/client"

// TokenSource supplies the bearer token for authenticated calls. An empty
// token means nobody is logged in.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

// Token returns t.
func (t StaticToken) Token() string { return string(t) }

// Client calls the marketplace API. It holds no session state of its own:
// the token is read from its TokenSource on every authenticated call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. The default is a client
// without a timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithTracerProvider sets the provider spans are started from. The default
// is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(tracerName) }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// call describes one API request.
type call struct {
	op       string
	sentinel error
	method   string
	path     string
	query    url.Values

	// body is JSON-encoded unless raw is set.
	body        any
	raw         io.Reader
	contentType string

	// bearer is the token to send; empty sends none.
	bearer string

	// out receives the decoded JSON response, if non-nil.
	out any

	// notFound is joined to the sentinel on a 404.
	notFound error
}

// authorize resolves the bearer token for cl. It fails without any I/O when
// no token is available.
func (c *Client) authorize(cl *call) error {
	token := c.token()
	if token == "" {
		return fmt.Errorf("%s: %w", cl.op, ErrAuthRequired)
	}
	cl.bearer = token
	return nil
}

// do executes cl. Any transport error, non-2xx status or undecodable body is
// reported as cl.sentinel.
func (c *Client) do(ctx context.Context, cl *call) error {
	ctx, span := c.tracer.Start(ctx, "resell."+cl.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", cl.method),
			attribute.String("url.path", cl.path),
		))
	defer span.End()

	err := c.roundTrip(ctx, span, cl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, span trace.Span, cl *call) error {
	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	body := cl.raw
	contentType := cl.contentType
	if body == nil && cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("%w: encoding request: %w", cl.sentinel, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return fmt.Errorf("%w: %w", cl.sentinel, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if cl.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+cl.bearer)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.DebugContext(ctx, "api request failed", "op", cl.op, "method", cl.method, "path", cl.path, "error", err)
		return fmt.Errorf("%w: %w", cl.sentinel, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	slog.DebugContext(ctx, "api request",
		"op", cl.op,
		"method", cl.method,
		"path", cl.path,
		"status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		if resp.StatusCode == http.StatusNotFound && cl.notFound != nil {
			return fmt.Errorf("%w: %w", cl.sentinel, cl.notFound)
		}
		return fmt.Errorf("%w: status %d", cl.sentinel, resp.StatusCode)
	}

	if cl.out != nil {
		if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
			return fmt.Errorf("%w: decoding response: %w", cl.sentinel, err)
		}
	}
	return nil
}

func itemPath(id int64) string {
	return fmt.Sprintf("/items/%d", id)
}
