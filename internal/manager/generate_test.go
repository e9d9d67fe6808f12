package manager

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hfserve/internal/backend"
	"hfserve/internal/config"
	"hfserve/internal/guardrails"
	"hfserve/pkg/types"
)

func TestGenerateDefaults(t *testing.T) {
	s := config.Defaults()
	eng := &fakeEngine{out: " world"}
	m := newTestManager(t, s, eng)
	resp, err := m.Generate(context.Background(), req("Hello"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := types.GenerateResponse{ModelID: "gpt2", Backend: "vllm", GeneratedText: " world"}
	if resp != want {
		t.Fatalf("resp = %+v, want %+v", resp, want)
	}
	if eng.last != (backend.GenerationOptions{MaxNewTokens: 128, Temperature: 0.7, TopP: 0.95}) {
		t.Fatalf("opts = %+v", eng.last)
	}
}

func TestGenerateOverrides(t *testing.T) {
	eng := &fakeEngine{out: "ok"}
	m := newTestManager(t, config.Defaults(), eng)
	_, err := m.Generate(context.Background(), types.GenerateRequest{
		Prompt:       "hi",
		MaxNewTokens: intp(50),
		Temperature:  floatp(0),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if eng.last != (backend.GenerationOptions{MaxNewTokens: 50, Temperature: 0, TopP: 0.95}) {
		t.Fatalf("opts = %+v", eng.last)
	}
}

func TestGeneratePromptTooLong(t *testing.T) {
	s := config.Defaults()
	s.MaxPromptChars = 5
	eng := &fakeEngine{out: "x"}
	m := newTestManager(t, s, eng)
	_, err := m.Generate(context.Background(), req("abcdef"))
	if !guardrails.IsViolation(err) {
		t.Fatalf("expected violation, got %v", err)
	}
	if err.Error() != "prompt exceeds MAX_PROMPT_CHARS=5" {
		t.Fatalf("message = %q", err.Error())
	}
	if eng.callCount() != 0 {
		t.Fatalf("engine must not be called on rejection")
	}
	// exactly at the limit passes
	if _, err := m.Generate(context.Background(), req("abcde")); err != nil {
		t.Fatalf("prompt at limit rejected: %v", err)
	}
}

func TestGenerateBlockedTerm(t *testing.T) {
	s := config.Defaults()
	s.BlockedTerms = "foo, bar"
	eng := &fakeEngine{out: "x"}
	m := newTestManager(t, s, eng)
	_, err := m.Generate(context.Background(), req("this has FOO in it"))
	if !guardrails.IsViolation(err) || strings.Contains(strings.ToLower(err.Error()), "foo") {
		t.Fatalf("unexpected error: %v", err)
	}
	if eng.callCount() != 0 {
		t.Fatalf("engine must not be called on rejection")
	}
}

func TestGenerateMaxNewTokensLimit(t *testing.T) {
	s := config.Defaults()
	s.MaxRequestNewTokens = 10
	eng := &fakeEngine{out: "x"}
	m := newTestManager(t, s, eng)
	_, err := m.Generate(context.Background(), types.GenerateRequest{Prompt: "hi", MaxNewTokens: intp(11)})
	if !guardrails.IsViolation(err) || err.Error() != "max_new_tokens exceeds MAX_REQUEST_NEW_TOKENS=10" {
		t.Fatalf("unexpected error: %v", err)
	}
	// the configured default (128) is also checked when the request omits it
	_, err = m.Generate(context.Background(), req("hi"))
	if !guardrails.IsViolation(err) {
		t.Fatalf("expected default max_new_tokens to be rejected, got %v", err)
	}
	if eng.callCount() != 0 {
		t.Fatalf("engine must not be called on rejection")
	}
}

func TestGenerateGuardrailsDisabled(t *testing.T) {
	s := config.Defaults()
	s.EnableGuardrails = false
	s.MaxPromptChars = 1
	s.BlockedTerms = "foo"
	eng := &fakeEngine{out: "x"}
	m := newTestManager(t, s, eng)
	if _, err := m.Generate(context.Background(), types.GenerateRequest{Prompt: "foo foo", MaxNewTokens: intp(100000)}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if eng.callCount() != 1 {
		t.Fatalf("engine calls = %d", eng.callCount())
	}
}

func TestGenerateEngineError(t *testing.T) {
	eng := &fakeEngine{err: errors.New("CUDA error: device-side assert")}
	m := newTestManager(t, config.Defaults(), eng)
	_, err := m.Generate(context.Background(), req("hi"))
	if !backend.IsEngineRuntimeError(err) || ErrorKind(err) != KindEngineRuntime {
		t.Fatalf("expected engine runtime error, got %v", err)
	}
}

func TestGenerateConcurrent(t *testing.T) {
	eng := &fakeEngine{out: "x"}
	m := newTestManager(t, config.Defaults(), eng)
	const n = 16
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := m.Generate(context.Background(), req("hi"))
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("Generate: %v", err)
		}
	}
	if eng.callCount() != n {
		t.Fatalf("engine calls = %d", eng.callCount())
	}
}

func TestGenerateMetricsExposed(t *testing.T) {
	s := config.Defaults()
	s.BlockedTerms = "secret"
	m := newTestManager(t, s, &fakeEngine{out: "x"})
	_, _ = m.Generate(context.Background(), req("hi"))
	_, _ = m.Generate(context.Background(), req("a secret"))

	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.Bytes()
	for _, want := range []string{
		`hfserve_generate_requests_total{backend="vllm",outcome="ok"}`,
		`hfserve_guardrail_rejections_total{rule="blocked_term"}`,
		`hfserve_generate_duration_seconds_bucket{backend="vllm"`,
	} {
		if !bytes.Contains(body, []byte(want)) {
			t.Fatalf("metrics missing %s", want)
		}
	}
	if bytes.Contains(body, []byte("secret")) {
		t.Fatalf("blocked term leaked into metrics")
	}
}
