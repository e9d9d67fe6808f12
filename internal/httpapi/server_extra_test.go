package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"hfserve/pkg/types"
)

// Service that blocks until the context is done; used to exercise timeout path.
type blockService struct{ mockService }

func (b *blockService) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	<-ctx.Done()
	return types.GenerateResponse{}, ctx.Err()
}

func TestGenerateLogsWithZerologInfo(t *testing.T) {
	SetLogger(zerolog.New(io.Discard))
	defer SetLogger(zerolog.Nop())

	rec := postGenerate(t, NewMux(&mockService{}), `{"prompt":"hi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with info logging, got %d", rec.Code)
	}
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	SetCORSOptions(true, []string{"*"}, []string{"GET", "POST", "OPTIONS"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)

	h := NewMux(&mockService{ready: true})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options=nosniff, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatalf("expected CORS header Access-Control-Allow-Origin to be set, got empty")
	}
}

func TestCORSDisabledByDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected CORS header %q", got)
	}
}

func TestGenerateTimeoutReturns500(t *testing.T) {
	defer SetGenerateTimeoutSeconds(0)
	SetGenerateTimeoutSeconds(1)

	start := time.Now()
	rec := postGenerate(t, NewMux(&blockService{}), `{"prompt":"x"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on timeout, got %d", rec.Code)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("timeout not applied")
	}
}

func TestGenerateShutdownCancels(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	SetBaseContext(base)
	defer SetBaseContext(context.Background())
	cancel()

	rec := postGenerate(t, NewMux(&blockService{}), `{"prompt":"x"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when server is shutting down, got %d", rec.Code)
	}
}

func TestGenerateWithDebugLogging(t *testing.T) {
	SetLogger(zerolog.New(io.Discard))
	defer SetLogger(zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/generate?log=debug", strings.NewReader(`{"prompt":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
