package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"examifyr-gateway/internal/upstream"
)

// NewRouter wires the gateway routes. play may be nil to disable websocket play.
func NewRouter(proxy *ProxyHandler, play *WSHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"ok"}`)
	})
	mux.HandleFunc("GET /readyz", proxy.Ready)
	mux.HandleFunc("GET /api/v1/quizzes/{quizId}", proxy.GetQuiz)
	mux.HandleFunc("POST /api/v1/quizzes/generate", proxy.GenerateQuiz)
	// "generate" is not a quiz id; keep it from matching {quizId}.
	mux.HandleFunc("GET /api/v1/quizzes/generate", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", http.MethodPost)
		writeResponse(w, upstream.ErrorResponse(http.StatusMethodNotAllowed, "method not allowed"))
	})
	if play != nil {
		mux.HandleFunc("GET /ws/play", play.ServeWS)
	}
	return withRecover(mux)
}

// withRecover turns handler panics into a 500 JSON envelope.
func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("handler panic", "path", r.URL.Path, "panic", rec)
				writeResponse(w, upstream.ErrorResponse(http.StatusInternalServerError, fmt.Sprint(rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
