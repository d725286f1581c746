package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"examifyr-gateway/internal/config"
	"examifyr-gateway/internal/domain"
	transport "examifyr-gateway/internal/transport/http"
	"examifyr-gateway/internal/upstream"
)

const sampleQuizJSON = `{
	"quiz_id": "q-1",
	"topic": "HTTP",
	"difficulty": "easy",
	"questions": [
		{"id": 1, "question": "GET is?", "choices": ["safe", "unsafe"], "answer_index": 0}
	]
}`

func TestGetQuizByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.EscapedPath() != "/api/v1/quizzes/q%201" {
			t.Errorf("path = %s", r.URL.EscapedPath())
		}
		if r.Header.Get("Content-Type") != "" {
			t.Errorf("GET without body must not set Content-Type")
		}
		w.Write([]byte(sampleQuizJSON))
	}))
	defer server.Close()

	quiz, err := New(server.URL+"/").GetQuizByID(context.Background(), "q 1")
	if err != nil {
		t.Fatalf("GetQuizByID() error = %v", err)
	}
	if quiz.QuizID != "q-1" || len(quiz.Questions) != 1 {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
}

func TestGenerateQuiz(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/quizzes/generate" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type = %q", r.Header.Get("Content-Type"))
		}
		var req domain.GenerateQuizRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Topic != "HTTP" || req.Difficulty != domain.DifficultyEasy || req.NumQuestions != 1 {
			t.Errorf("unexpected request %+v", req)
		}
		w.Write([]byte(sampleQuizJSON))
	}))
	defer server.Close()

	quiz, err := New(server.URL).GenerateQuiz(context.Background(), domain.GenerateQuizRequest{
		Topic:        "HTTP",
		Difficulty:   domain.DifficultyEasy,
		NumQuestions: 1,
	})
	if err != nil {
		t.Fatalf("GenerateQuiz() error = %v", err)
	}
	if quiz.Topic != "HTTP" {
		t.Fatalf("topic = %q", quiz.Topic)
	}
}

func TestRequestJSONErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"detail", http.StatusNotFound, `{"detail":"not found"}`, "not found"},
		{"message preferred over detail", http.StatusBadRequest, `{"message":"bad topic","detail":"ignored"}`, "bad topic"},
		{"non-string detail falls back to text", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body"]}]}`, `{"detail":[{"loc":["body"]}]}`},
		{"plain text", http.StatusBadGateway, "upstream exploded", "upstream exploded"},
		{"empty body", http.StatusServiceUnavailable, "", "Request failed (503)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := New(server.URL).RequestJSON(context.Background(), "", "/x", nil, nil)
			apiErr, ok := AsAPIError(err)
			if !ok {
				t.Fatalf("expected *APIError, got %T %v", err, err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMessage)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"not found"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).GetQuizByID(context.Background(), "gone")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err.Error() != "not found" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestMissingBaseURLIsNotAPIError(t *testing.T) {
	_, err := New("").GetQuizByID(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := AsAPIError(err); ok {
		t.Fatal("configuration error must not be an APIError")
	}
	var cfgErr *config.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestNetworkErrorIsNotAPIError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	_, err := New(base).GetQuizByID(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := AsAPIError(err); ok {
		t.Fatal("network error must not be an APIError")
	}
}

func TestNotFoundThroughGateway(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"not found"}`))
	}))
	defer backend.Close()

	cfg := config.Config{Upstream: config.UpstreamConfig{BaseURL: backend.URL}}
	proxy := transport.NewProxyHandler(upstream.NewProxy(cfg.BackendBaseURL))
	gateway := httptest.NewServer(transport.NewRouter(proxy, nil))
	defer gateway.Close()

	_, err := New(gateway.URL).GetQuizByID(context.Background(), "q-404")
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "not found" {
		t.Fatalf("unexpected APIError %+v", apiErr)
	}
}
