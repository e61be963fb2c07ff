package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"insight-profile/internal/upstream"
)

func TestGenerateSendsSystemAndUserMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" || r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("unexpected request %s %s", r.URL.Path, r.Header.Get("Authorization"))
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "hola" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "{\"ok\": true}"}}]}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "k", "m", time.Second, zap.NewNop(), WithSystemPrompt("sys"))
	got, err := client.Generate(context.Background(), "hola")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != `{"ok": true}` {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestGenerateMapsErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rejected", http.StatusTooManyRequests, `{"error": {"message": "quota"}}`, upstream.ErrRejected},
		{"empty choices", http.StatusOK, `{"choices": []}`, upstream.ErrUnavailable},
		{"malformed", http.StatusOK, `nope`, upstream.ErrUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := NewHTTPClient(srv.URL, "k", "m", time.Second, zap.NewNop())
			if _, err := client.Generate(context.Background(), "x"); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
