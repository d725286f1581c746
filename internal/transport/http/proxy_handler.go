package http

import (
	"io"
	"log/slog"
	"net/http"

	"examifyr-gateway/internal/upstream"
)

const maxRequestBody = 1 << 20

// ProxyHandler exposes the upstream proxy over HTTP.
type ProxyHandler struct {
	proxy *upstream.Proxy
}

// NewProxyHandler serves proxy routes backed by proxy.
func NewProxyHandler(proxy *upstream.Proxy) *ProxyHandler {
	return &ProxyHandler{proxy: proxy}
}

// GetQuiz serves GET /api/v1/quizzes/{quizId}.
func (h *ProxyHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, h.proxy.FetchQuizByID(r.Context(), r.PathValue("quizId")))
}

// GenerateQuiz serves POST /api/v1/quizzes/generate.
func (h *ProxyHandler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		writeResponse(w, upstream.ErrorResponse(http.StatusInternalServerError, "read request body: "+err.Error()))
		return
	}
	writeResponse(w, h.proxy.ForwardGenerate(r.Context(), body))
}

// Ready reports whether the upstream service answers its health check.
func (h *ProxyHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.proxy.Health(r.Context()); err != nil {
		slog.Warn("upstream not ready", "error", err)
		writeResponse(w, upstream.ErrorResponse(http.StatusServiceUnavailable, err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, `{"status":"ready"}`)
}

func writeResponse(w http.ResponseWriter, resp upstream.Response) {
	if resp.JSON {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(resp.Status)
	if _, err := w.Write(resp.Body); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}
