// Package client calls the gateway's quiz endpoints on behalf of front ends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"examifyr-gateway/internal/config"
	"examifyr-gateway/internal/domain"
	"examifyr-gateway/internal/upstream"
)

// APIError is returned when the server answered with a non-2xx status.
// Any other error means the request never got a response.
type APIError struct {
	Message string
	Status  int
}

func (e *APIError) Error() string {
	return e.Message
}

// AsAPIError unwraps err into an *APIError if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == http.StatusNotFound
}

// Client issues JSON requests against a base URL.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// New creates a client. An empty baseURL is reported as a
// *config.ConfigurationError on each request.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestJSON sends method to path and decodes a 2xx JSON body into out.
// An empty method means GET. A non-nil body is sent as JSON. out may be nil.
func (c *Client) RequestJSON(ctx context.Context, method, path string, body, out any) error {
	base, err := config.NormalizeBaseURL(c.baseURL)
	if err != nil {
		return err
	}
	if method == "" {
		method = http.MethodGet
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Message: errorMessage(resp.StatusCode, respBody), Status: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// GenerateQuiz asks for a new quiz. The caller is expected to have clamped
// NumQuestions with domain.ClampNumQuestions.
func (c *Client) GenerateQuiz(ctx context.Context, req domain.GenerateQuizRequest) (domain.Quiz, error) {
	var quiz domain.Quiz
	if err := c.RequestJSON(ctx, http.MethodPost, "/api/v1/quizzes/generate", req, &quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// GetQuizByID fetches a previously generated quiz.
func (c *Client) GetQuizByID(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	if err := c.RequestJSON(ctx, http.MethodGet, "/api/v1/quizzes/"+upstream.EncodeComponent(quizID), nil, &quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// errorMessage prefers a JSON "message" string, then "detail", then the raw
// body, then a synthesized message.
func errorMessage(status int, body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg, ok := payload["message"].(string); ok {
			return msg
		}
		if detail, ok := payload["detail"].(string); ok {
			return detail
		}
	}
	if len(body) > 0 {
		return string(body)
	}
	return fmt.Sprintf("Request failed (%d)", status)
}
