package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Readiness_HidesPingErrors(t *testing.T) {
	e := newTestEcho()
	var logs bytes.Buffer
	h := NewHealthHandler(map[string]Pinger{
		"postgres": pingerFunc(func(context.Context) error {
			return errors.New("dial tcp db.internal:5432: password authentication failed for user \"inventory\"")
		}),
		"redis": pingerFunc(func(context.Context) error { return nil }),
		"mongo": nil,
	}, zerolog.New(&logs))

	c, rec := jsonContext(e, http.MethodGet, "/health/ready", "")
	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "db.internal") || strings.Contains(rec.Body.String(), "inventory") {
		t.Fatalf("ping error leaked to client: %s", rec.Body.String())
	}

	resp := decodeBody(t, rec)
	deps := resp["dependencies"].(map[string]any)
	if deps["postgres"].(map[string]any)["status"] != "unhealthy" || deps["redis"].(map[string]any)["status"] != "ok" {
		t.Fatalf("unexpected dependencies: %v", deps)
	}
	if _, ok := deps["mongo"]; ok {
		t.Fatalf("nil pinger must be skipped: %v", deps)
	}
	if !strings.Contains(logs.String(), "db.internal") {
		t.Fatalf("expected the ping error in the log, got %q", logs.String())
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	e := newTestEcho()
	h := NewHealthHandler(nil, zerolog.Nop())

	c, rec := jsonContext(e, http.MethodGet, "/health", "")
	if err := h.Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decodeBody(t, rec); resp["status"] != "ok" || resp["timestamp"] == "" {
		t.Fatalf("unexpected body: %v", resp)
	}
}
