// Package gateway is the authenticated HTTP client for the VaultString API
// gateway. Every request carries the persisted bearer token (when present)
// and the stable per-installation device identifier. Failures map onto the
// client taxonomy: Unauthorized clears the session before surfacing, network
// failures and server rejections stay distinct so callers can choose how to
// degrade. There is no automatic retry; callers decide.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/errors"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/httpclient"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/httputil"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/logger"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/tracing"
)

// TokenStore is the slice of the local state the gateway client touches: it
// reads the bearer token and device identifier on every request and clears
// the token when the gateway says the session is gone.
type TokenStore interface {
	Token() string
	ClearToken() error
	DeviceID() (string, error)
}

// Config holds gateway client configuration.
type Config struct {
	BaseURL string

	// QuoteTimeout and SubmitTimeout bound the rate-quote and
	// transfer-submission calls; the flow must never hang on a dead gateway.
	QuoteTimeout  time.Duration
	SubmitTimeout time.Duration

	HTTP    httpclient.Config
	Breaker httpclient.CircuitBreakerConfig
}

// DefaultConfig returns gateway client defaults for the given base URL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:       baseURL,
		QuoteTimeout:  5 * time.Second,
		SubmitTimeout: 15 * time.Second,
		HTTP:          httpclient.DefaultConfig(),
		Breaker:       httpclient.DefaultCircuitBreakerConfig("vaultstring-gateway"),
	}
}

// doer abstracts the plain HTTP client and its circuit-breaker wrapper.
type doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client issues authenticated requests against the remote gateway.
type Client struct {
	baseURL        string
	plain          doer
	resilient      doer
	store          TokenStore
	logger         *slog.Logger
	tracer         trace.Tracer
	quoteTimeout   time.Duration
	submitTimeout  time.Duration
	onUnauthorized func()
}

// New creates a gateway client. The circuit breaker guards the money-path
// calls (quote, submit); everything else goes through the plain client.
func New(cfg Config, store TokenStore, logger *slog.Logger) *Client {
	base := httpclient.New(cfg.HTTP)
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		plain:         base,
		resilient:     httpclient.NewCircuitBreakerClient(base, cfg.Breaker, logger).WithFallback(circuitOpenFallback),
		store:         store,
		logger:        logger,
		tracer:        tracing.Tracer("gateway"),
		quoteTimeout:  cfg.QuoteTimeout,
		submitTimeout: cfg.SubmitTimeout,
	}
}

// circuitOpenFallback answers the money-path calls while the breaker is open:
// fail fast with a retryable message instead of hammering a gateway that is
// already struggling.
func circuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.API(http.StatusServiceUnavailable, "transfers are briefly unavailable, please retry in a moment")
}

// OnUnauthorized registers the hook invoked after an unauthorized response
// has cleared the token. The app uses it to drop the in-memory session and
// return the user to the login screen.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// request describes one gateway call.
type request struct {
	operation string
	method    string
	path      string
	query     url.Values
	body      any

	// raw, when set, is sent as-is with the given content type instead of a
	// JSON-encoded body (used for multipart uploads).
	raw         io.Reader
	contentType string

	// resilient routes the call through the circuit breaker.
	resilient bool
}

// do executes a gateway call and decodes the enveloped response into out
// (which may be nil for calls without a payload).
func (c *Client) do(ctx context.Context, req request, out any) error {
	start := time.Now()

	ctx, span := c.tracer.Start(ctx, "gateway."+req.operation)
	defer span.End()

	if deviceID, derr := c.store.DeviceID(); derr != nil {
		// A request without the device header is better than no request.
		c.logger.WarnContext(ctx, "device id unavailable", slog.String("error", derr.Error()))
	} else {
		ctx = logger.WithDeviceID(ctx, deviceID)
	}
	// Every log line for this call carries the device id and, when tracing is
	// on, the trace and span ids.
	ctx = logger.NewContext(ctx, logger.WithContext(ctx, c.logger))

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		observeRequest(req.operation, "error", start)
		return err
	}

	client := c.plain
	if req.resilient {
		client = c.resilient
	}

	resp, err := client.Do(ctx, httpReq)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			// The circuit-breaker fallback already mapped the failure.
			observeRequest(req.operation, "api_error", start)
			return err
		}
		observeRequest(req.operation, "network_error", start)
		logger.FromContext(ctx).WarnContext(ctx, "gateway request failed",
			slog.String("operation", req.operation),
			slog.String("error", err.Error()),
		)
		return apperrors.Network(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		observeRequest(req.operation, "unauthorized", start)
		return c.handleUnauthorized(ctx, req.operation, resp)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		observeRequest(req.operation, "api_error", start)
		return c.handleAPIError(ctx, req.operation, resp)
	}

	observeRequest(req.operation, "ok", start)

	if out == nil {
		return nil
	}
	return decodeBody(resp.Body, out)
}

// newHTTPRequest builds the request with auth and device headers attached.
func (c *Client) newHTTPRequest(ctx context.Context, req request) (*http.Request, error) {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	contentType := req.contentType
	switch {
	case req.raw != nil:
		body = req.raw
	case req.body != nil:
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", req.operation, err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", req.operation, err)
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	if token := c.store.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	if deviceID := logger.DeviceIDFromContext(ctx); deviceID != "" {
		httpReq.Header.Set("X-Device-ID", deviceID)
	}

	return httpReq, nil
}

// handleUnauthorized clears the persisted token and invokes the configured
// hook before rejecting: the session is gone and the UI must return to login.
func (c *Client) handleUnauthorized(ctx context.Context, operation string, resp *http.Response) error {
	log := logger.FromContext(ctx)

	if err := c.store.ClearToken(); err != nil {
		log.ErrorContext(ctx, "failed to clear token after unauthorized response",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
	}

	log.InfoContext(ctx, "session rejected by gateway",
		slog.String("operation", operation),
		slog.Int("status", resp.StatusCode),
	)

	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	msg := readErrorMessage(resp.Body)
	if msg == "" {
		msg = "session expired"
	}
	return apperrors.Unauthorized(msg)
}

// handleAPIError maps any other non-2xx response, preserving the server
// message when present.
func (c *Client) handleAPIError(ctx context.Context, operation string, resp *http.Response) error {
	msg := readErrorMessage(resp.Body)

	logger.FromContext(ctx).WarnContext(ctx, "gateway rejected request",
		slog.String("operation", operation),
		slog.Int("status", resp.StatusCode),
		slog.String("message", msg),
	)

	return apperrors.API(resp.StatusCode, msg)
}

// readErrorMessage extracts the optional message from an error body. The
// gateway normally speaks the envelope format, but older endpoints return a
// bare {"message": ...}.
func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 1<<20)) // 1 MB limit
	if err != nil {
		return ""
	}

	var envelope httputil.Response
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil {
		return envelope.Error.Message
	}

	var bare struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &bare) == nil {
		return bare.Message
	}
	return ""
}

// decodeBody unwraps the response envelope into out, falling back to a
// direct decode for endpoints that never adopted the envelope.
func decodeBody(body io.Reader, out any) error {
	raw, err := io.ReadAll(io.LimitReader(body, 8<<20)) // 8 MB limit
	if err != nil {
		return apperrors.Network(fmt.Errorf("read response body: %w", err))
	}

	var envelope httputil.Response
	if json.Unmarshal(raw, &envelope) == nil && envelope.Data != nil {
		raw = envelope.Data
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}
