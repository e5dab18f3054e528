// Package gateway is the single point through which all backend communication
// flows. It guarantees consistent auth, timeout and error semantics for every
// domain method: auth injection from the session, per-call cancellation,
// envelope normalization, structured error classification, and session
// invalidation on 401/440.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/centsible/centsible-go/internal/domain"
	"github.com/centsible/centsible-go/internal/infra/observability"
	"github.com/centsible/centsible-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("gateway")

// Config holds the client's fixed parameters.
type Config struct {
	// BaseURL is the backend API root, without a trailing slash.
	BaseURL string
	// Timeout is the default per-call deadline; individual calls may
	// override it through RequestOptions.
	Timeout time.Duration
	// ReadPolicy, when set, is attached to idempotent read operations.
	// Writes never get a policy implicitly.
	ReadPolicy *Policy
}

// Client wraps HTTP calls to the backend REST API. All domain methods funnel
// through Request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	session    *Session
	categories port.Cache[[]domain.Category]
	readPolicy *Policy
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewClient creates a gateway client. categoryCache may be nil to disable
// client-side caching of categories.
func NewClient(
	httpClient *http.Client,
	cfg Config,
	session *Session,
	categoryCache port.Cache[[]domain.Category],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
		session:    session,
		categories: categoryCache,
		readPolicy: cfg.ReadPolicy,
		metrics:    metrics,
		logger:     logger,
	}
}

// Session exposes the client's session, mainly so callers can subscribe to
// invalidation.
func (c *Client) Session() *Session { return c.session }

// RequestOptions configures a single call through the primitive.
type RequestOptions struct {
	// Method defaults to GET.
	Method string
	// Operation names the call for metrics and spans, e.g. "bills.list".
	Operation string
	// Headers are merged over the defaults; caller wins on conflict.
	Headers map[string]string
	// JSON, when non-nil, is serialized as the request body with a JSON
	// content type.
	JSON any
	// Body is a raw body passthrough (multipart uploads). No content type
	// is set for it here; the caller supplies one, or deliberately omits
	// it so the transport boundary can be set by the writer.
	Body io.Reader
	// Timeout overrides the client default for this call only.
	Timeout time.Duration
	// Policy opts this call into retry/circuit-breaking. When nil, GETs
	// fall back to the client's configured ReadPolicy (if any); writes
	// get a single attempt. Ignored when Body is set, since a raw reader
	// cannot be replayed across attempts.
	Policy *Policy
}

// Request issues one HTTP call and returns the raw JSON body for a 2xx
// response. Callers normalize envelopes themselves. Any non-2xx response
// becomes a *domain.TransportError; a 401/440 additionally invalidates the
// session before the error is returned, so no caller-level logic can race
// with the credential erasure.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
	op := opts.Operation
	if op == "" {
		op = path
	}

	ctx, span := tracer.Start(ctx, "gateway.Request")
	defer span.End()
	span.SetAttributes(attribute.String("gateway.operation", op))

	start := time.Now()
	defer func() { c.metrics.RecordRequestDuration(op, time.Since(start)) }()

	// Mutating calls carry one idempotency key, minted here so every retry
	// attempt replays the same value and the backend can de-duplicate.
	if opts.Method != "" && opts.Method != http.MethodGet {
		headers := make(map[string]string, len(opts.Headers)+1)
		for k, v := range opts.Headers {
			headers[k] = v
		}
		if _, ok := headers["Idempotency-Key"]; !ok {
			headers["Idempotency-Key"] = uuid.New().String()
		}
		opts.Headers = headers
	}

	policy := opts.Policy
	if opts.Body != nil {
		// A raw body reader can only be consumed once; a retry would
		// replay it empty. Raw-body calls always get a single attempt.
		policy = nil
	} else if policy == nil && (opts.Method == "" || opts.Method == http.MethodGet) {
		policy = c.readPolicy
	}

	if policy != nil {
		var raw json.RawMessage
		err := policy.execute(ctx, func() error {
			var attemptErr error
			raw, attemptErr = c.doOnce(ctx, path, opts, op)
			return attemptErr
		})
		return raw, err
	}
	return c.doOnce(ctx, path, opts, op)
}

// doOnce performs a single HTTP exchange.
func (c *Client) doOnce(ctx context.Context, path string, opts RequestOptions, op string) (json.RawMessage, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	jsonBody := false
	switch {
	case opts.JSON != nil:
		encoded, err := json.Marshal(opts.JSON)
		if err != nil {
			return nil, fmt.Errorf("gateway: encode body: %w", err)
		}
		body = bytes.NewReader(encoded)
		jsonBody = true
	case opts.Body != nil:
		body = opts.Body
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if jsonBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.IncrRequest(0)
		var netErr net.Error
		timedOut := errors.Is(err, context.DeadlineExceeded) ||
			ctx.Err() == context.DeadlineExceeded ||
			(errors.As(err, &netErr) && netErr.Timeout())
		if timedOut {
			c.metrics.IncrTransportError("timeout")
			c.logger.Warn("gateway: request timed out",
				zap.String("operation", op),
				zap.Duration("timeout", timeout),
			)
			return nil, &domain.TransportError{Message: "request timed out", Timeout: true}
		}
		c.metrics.IncrTransportError("network")
		c.logger.Error("gateway: request failed",
			zap.String("operation", op),
			zap.Error(err),
		)
		return nil, &domain.TransportError{Message: "network error: " + err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncrRequest(0)
		c.metrics.IncrTransportError("network")
		return nil, &domain.TransportError{Message: "failed to read response body"}
	}

	c.metrics.IncrRequest(resp.StatusCode)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Debug("gateway: request OK",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
		)
		return raw, nil
	}

	c.metrics.IncrTransportError("http")
	return nil, c.classifyError(op, resp.StatusCode, raw)
}

// errorPayload is the error body shape backends return on non-2xx responses.
type errorPayload struct {
	Message string          `json:"message"`
	Title   string          `json:"title"`
	Errors  json.RawMessage `json:"errors"`
}

// classifyError turns a non-2xx response into a structured transport error.
func (c *Client) classifyError(op string, status int, raw []byte) error {
	var payload errorPayload
	// A non-JSON error body is fine; classification falls back to defaults.
	_ = json.Unmarshal(raw, &payload)

	te := &domain.TransportError{
		Status:  status,
		Payload: json.RawMessage(raw),
		Message: firstNonEmpty(payload.Message, payload.Title, fmt.Sprintf("HTTP error! status: %d", status)),
	}

	switch status {
	case http.StatusBadRequest:
		te.Errors = flattenValidationErrors(payload.Errors)

	case http.StatusUnauthorized, domain.StatusLoginTimeout:
		// Credential erasure happens here, before the rejection reaches
		// the caller. Exactly one invalidation per expired session.
		if c.session.Invalidate() {
			c.metrics.IncrSessionInvalidation()
			c.logger.Warn("gateway: session expired, credentials cleared",
				zap.String("operation", op),
				zap.Int("status", status),
			)
		}
		te.Message = "unauthorized"

	case http.StatusForbidden:
		te.Message = firstNonEmpty(payload.Message, payload.Title, "Forbidden")

	case http.StatusNotFound:
		te.Message = firstNonEmpty(payload.Message, payload.Title, "User not found")
	}

	c.logger.Warn("gateway: non-2xx response",
		zap.String("operation", op),
		zap.Int("status", status),
		zap.String("message", te.Message),
	)
	return te
}

// flattenValidationErrors normalizes the 400 payload's errors field. Two
// shapes are expected: a plain array of strings, or an object keyed by field
// name whose values are one message or a list of messages. The object is
// walked in document order so the flattened list keeps field-then-message
// ordering. Anything else yields nil and the generic error path applies.
func flattenValidationErrors(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}

	switch delim {
	case '[':
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil
		}
		return list

	case '{':
		var out []string
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil
			}
			field, ok := keyTok.(string)
			if !ok {
				return nil
			}
			var value json.RawMessage
			if err := dec.Decode(&value); err != nil {
				return nil
			}
			for _, msg := range stringOrList(value) {
				out = append(out, field+": "+msg)
			}
		}
		return out
	}
	return nil
}

func stringOrList(raw json.RawMessage) []string {
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return []string{one}
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Result mirrors the {data: ...} shape every verb wrapper returns, keeping
// call sites uniform with paginated-style responses.
type Result[T any] struct {
	Data T `json:"data"`
}

// Get issues a GET and decodes the raw response into Result[T].
func Get[T any](ctx context.Context, c *Client, path string, opts RequestOptions) (Result[T], error) {
	opts.Method = http.MethodGet
	return do[T](ctx, c, path, opts)
}

// Post issues a POST with a JSON body and decodes into Result[T].
func Post[T any](ctx context.Context, c *Client, path string, body any, opts RequestOptions) (Result[T], error) {
	opts.Method = http.MethodPost
	opts.JSON = body
	return do[T](ctx, c, path, opts)
}

// Put issues a PUT with a JSON body and decodes into Result[T].
func Put[T any](ctx context.Context, c *Client, path string, body any, opts RequestOptions) (Result[T], error) {
	opts.Method = http.MethodPut
	opts.JSON = body
	return do[T](ctx, c, path, opts)
}

// Delete issues a DELETE and decodes into Result[T].
func Delete[T any](ctx context.Context, c *Client, path string, opts RequestOptions) (Result[T], error) {
	opts.Method = http.MethodDelete
	return do[T](ctx, c, path, opts)
}

func do[T any](ctx context.Context, c *Client, path string, opts RequestOptions) (Result[T], error) {
	var res Result[T]
	raw, err := c.Request(ctx, path, opts)
	if err != nil {
		return res, err
	}
	if len(raw) == 0 {
		return res, nil // 204-style empty body
	}
	if err := json.Unmarshal(raw, &res.Data); err != nil {
		return res, fmt.Errorf("gateway: decode response: %w", err)
	}
	return res, nil
}

// PostMultipart uploads fields and files as multipart/form-data. The content
// type comes from the multipart writer so the boundary is set correctly.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files map[string][]byte, opts RequestOptions) (json.RawMessage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("gateway: multipart field %q: %w", name, err)
		}
	}
	for name, content := range files {
		part, err := w.CreateFormFile(name, name)
		if err != nil {
			return nil, fmt.Errorf("gateway: multipart file %q: %w", name, err)
		}
		if _, err := part.Write(content); err != nil {
			return nil, fmt.Errorf("gateway: multipart file %q: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	opts.Method = http.MethodPost
	opts.Body = &buf
	if opts.Headers == nil {
		opts.Headers = map[string]string{}
	}
	opts.Headers["Content-Type"] = w.FormDataContentType()
	return c.Request(ctx, path, opts)
}
