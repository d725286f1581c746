package cli

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"examifyr-gateway/internal/config"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

func TestNewHandlerServesPlayFromUpstream(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/quizzes/quiz-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"quiz_id":"quiz-1","topic":"Go","difficulty":"easy","questions":[{"id":1,"question":"?","choices":["a","b"],"answer_index":0}]}`))
	}))
	defer backend.Close()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := config.Config{Upstream: config.UpstreamConfig{BaseURL: backend.URL}}
	gateway := httptest.NewServer(newHandler(cfg, redisClient))
	defer gateway.Close()

	resp, err := http.Get(gateway.URL + "/api/v1/quizzes/quiz-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected proxied 200, got %d", resp.StatusCode)
	}

	u := "ws" + strings.TrimPrefix(gateway.URL, "http") + "/ws/play?quizId=quiz-1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var msg struct {
		Type string `json:"type"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "started" {
		t.Fatalf("expected started, got %s", msg.Type)
	}
	if !mr.Exists("quiz:quiz-1") {
		t.Fatalf("expected quiz cached in redis")
	}
	if len(mr.Keys()) < 2 {
		t.Fatalf("expected session marker alongside quiz cache, keys=%v", mr.Keys())
	}
}

func TestNewHandlerWithoutUpstream(t *testing.T) {
	gateway := httptest.NewServer(newHandler(config.Config{}, nil))
	defer gateway.Close()

	resp, err := http.Get(gateway.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz must not depend on upstream config, got %d", resp.StatusCode)
	}

	resp, err = http.Get(gateway.URL + "/api/v1/quizzes/x")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 without upstream, got %d", resp.StatusCode)
	}
}
