package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"hfserve/internal/config"
	"hfserve/internal/httpapi"
	"hfserve/internal/manager"
)

// fakeEngine mimics the HTTP surface of vLLM and text-generation-inference.
type fakeEngine struct {
	mu       sync.Mutex
	requests []map[string]any
	paths    []string
}

func (f *fakeEngine) record(path string, body map[string]any) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.requests = append(f.requests, body)
	f.mu.Unlock()
}

func (f *fakeEngine) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.paths)
}

func (f *fakeEngine) last() (string, map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.paths) == 0 {
		return "", nil
	}
	return f.paths[len(f.paths)-1], f.requests[len(f.requests)-1]
}

func newFakeEngine(t *testing.T) (*fakeEngine, *httptest.Server) {
	t.Helper()
	fe := &fakeEngine{}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("/v1/completions", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		fe.record(r.URL.Path, body)
		if body["prompt"] == "explode" {
			http.Error(w, `{"error":"CUDA out of memory"}`, http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []map[string]any{{"text": " und Welt"}}})
	})
	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		fe.record(r.URL.Path, body)
		prompt, _ := body["inputs"].(string)
		_ = json.NewEncoder(w).Encode(map[string]any{"generated_text": prompt + "XYZ"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return fe, srv
}

// newStack wires the HTTP API, manager and dispatcher to the engine at engineURL.
func newStack(t *testing.T, s config.Settings, engineURL string) (*httptest.Server, *manager.Manager) {
	t.Helper()
	s.EngineURL = engineURL
	s.EngineReadyTimeoutSeconds = 5
	mgr := manager.New(manager.Config{Settings: s, Logger: zerolog.Nop()})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mgr.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(srv.Close)
	return srv, mgr
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewBufferString(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
