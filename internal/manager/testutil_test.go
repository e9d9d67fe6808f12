package manager

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"hfserve/internal/backend"
	"hfserve/internal/config"
	"hfserve/pkg/types"
)

// fakeEngine is an in-memory backend.Engine used for tests.
type fakeEngine struct {
	mu      sync.Mutex
	out     string
	err     error
	calls   int
	last    backend.GenerationOptions
	prompts []string
	closed  bool
}

func (f *fakeEngine) Generate(ctx context.Context, prompt string, opts backend.GenerationOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = opts
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// newTestManager builds a loaded Manager whose configured backend is served by eng.
func newTestManager(t *testing.T, s config.Settings, eng *fakeEngine) *Manager {
	t.Helper()
	d := backend.NewDispatcher(s, backend.WithLoader(s.Backend,
		func(context.Context, backend.LoadSpec, backend.Runtime) (backend.Engine, error) { return eng, nil }))
	m := New(Config{Settings: s, Dispatcher: d, Logger: zerolog.Nop()})
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func req(prompt string) types.GenerateRequest { return types.GenerateRequest{Prompt: prompt} }
