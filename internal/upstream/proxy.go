// Package upstream relays quiz requests to the quiz generation service.
package upstream

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

	"examifyr-gateway/internal/domain"
)

const (
	quizzesPath  = "/api/v1/quizzes/"
	generatePath = "/api/v1/quizzes/generate"
)

// Locator resolves the upstream base URL at request time.
type Locator func() (string, error)

// Response is what the proxy relays back to its caller. JSON reports whether
// Body is valid JSON; otherwise Body is raw upstream text.
type Response struct {
	Status int
	Body   []byte
	JSON   bool
}

// ErrorResponse builds the {"message": ...} envelope used for gateway failures.
func ErrorResponse(status int, message string) Response {
	body, _ := json.Marshal(map[string]string{"message": message})
	return Response{Status: status, Body: body, JSON: true}
}

// Proxy forwards quiz requests upstream. It holds no per-request state and is
// safe for concurrent use.
type Proxy struct {
	locate Locator
	client *http.Client
}

// Option configures a Proxy.
type Option func(*Proxy)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Proxy) {
		p.client = client
	}
}

// NewProxy creates a proxy that resolves the upstream base URL with locate on
// every request.
func NewProxy(locate Locator, opts ...Option) *Proxy {
	p := &Proxy{
		locate: locate,
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchQuizByID relays GET /api/v1/quizzes/{quizID}.
func (p *Proxy) FetchQuizByID(ctx context.Context, quizID string) Response {
	base, err := p.locate()
	if err != nil {
		return p.fail("fetch", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+quizzesPath+EncodeComponent(quizID), nil)
	if err != nil {
		return p.fail("fetch", fmt.Errorf("create request: %w", err))
	}
	return p.relay("fetch", req)
}

// ForwardGenerate relays POST /api/v1/quizzes/generate. The body must be JSON;
// it is forwarded compacted but otherwise unchanged.
func (p *Proxy) ForwardGenerate(ctx context.Context, body []byte) Response {
	var compacted bytes.Buffer
	if err := json.Compact(&compacted, body); err != nil {
		return p.fail("generate", fmt.Errorf("invalid request body: %w", err))
	}
	base, err := p.locate()
	if err != nil {
		return p.fail("generate", err)
	}
	if err := domain.ValidateGenerateRequestJSON(compacted.Bytes()); err != nil {
		slog.Debug("rejected generate request", "error", err)
		return ErrorResponse(http.StatusBadRequest, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+generatePath, bytes.NewReader(compacted.Bytes()))
	if err != nil {
		return p.fail("generate", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	return p.relay("generate", req)
}

// Health probes GET {base}/health.
func (p *Proxy) Health(ctx context.Context) error {
	base, err := p.locate()
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

func (p *Proxy) relay(op string, req *http.Request) Response {
	resp, err := p.client.Do(req)
	if err != nil {
		return p.fail(op, fmt.Errorf("send request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return p.fail(op, fmt.Errorf("read response: %w", err))
	}
	return Response{Status: resp.StatusCode, Body: body, JSON: json.Valid(body)}
}

func (p *Proxy) fail(op string, err error) Response {
	slog.Error("upstream request failed", "op", op, "error", err)
	return ErrorResponse(http.StatusInternalServerError, err.Error())
}

// EncodeComponent percent-encodes s for use as a single path segment. Only
// unreserved characters and !'()* are left as-is.
func EncodeComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	for _, keep := range []string{"!", "'", "(", ")", "*"} {
		escaped = strings.ReplaceAll(escaped, url.QueryEscape(keep), keep)
	}
	return escaped
}
