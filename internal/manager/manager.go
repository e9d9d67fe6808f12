package manager

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"hfserve/internal/backend"
	"hfserve/internal/config"
	"hfserve/internal/guardrails"
)

type Manager struct {
	settings   config.Settings
	dispatcher Dispatcher
	guard      *guardrails.Evaluator
	cache      *responseCache
	logger     zerolog.Logger
	publisher  backend.EventPublisher

	mu      sync.RWMutex
	state   State
	lastErr string

	startTime   time.Time
	generations atomic.Uint64
	closeOnce   sync.Once
}

// New constructs a Manager. The engine is not started until Load.
func New(cfg Config) *Manager {
	pub := cfg.Publisher
	if pub == nil {
		pub = backend.NewMemoryPublisher()
	}
	d := cfg.Dispatcher
	if d == nil {
		d = backend.NewDispatcher(cfg.Settings,
			backend.WithLogger(cfg.Logger),
			backend.WithPublisher(pub),
		)
	}
	return &Manager{
		settings:   cfg.Settings,
		dispatcher: d,
		guard:      guardrails.New(cfg.Settings),
		cache:      newResponseCache(cfg.Settings),
		logger:     cfg.Logger,
		publisher:  pub,
		state:      StateLoading,
		startTime:  time.Now(),
	}
}

// Settings returns the configuration the manager was built with.
func (m *Manager) Settings() config.Settings { return m.settings }

// Load brings up the engine. It must complete before Generate is called.
func (m *Manager) Load(ctx context.Context) error {
	m.publisher.Publish(backend.Event{Name: "load_start", Backend: m.settings.Backend})
	if err := m.dispatcher.Load(ctx); err != nil {
		m.mu.Lock()
		m.state = StateError
		m.lastErr = err.Error()
		m.mu.Unlock()
		m.logger.Error().Err(err).Str("kind", ErrorKind(err)).Str("backend", m.settings.Backend).Msg("engine load failed")
		m.publisher.Publish(backend.Event{Name: "load_error", Backend: m.settings.Backend, Fields: map[string]any{"error": err.Error()}})
		return err
	}
	m.mu.Lock()
	m.state = StateReady
	m.lastErr = ""
	m.mu.Unlock()
	m.logger.Info().
		Str("model_id", m.settings.ModelID).
		Str("backend", m.settings.Backend).
		Str("quantization", m.dispatcher.QuantizationLabel()).
		Bool("guardrails", m.guard.Enabled()).
		Int("blocked_terms", m.guard.BlockedTermCount()).
		Msg("model ready")
	m.publisher.Publish(backend.Event{Name: "load_ready", Backend: m.settings.Backend})
	return nil
}

// Ready reports whether the engine finished loading.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateReady
}

// Close stops the engine and the response cache. Safe to call more than once.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.state = StateClosed
		m.mu.Unlock()
		m.cache.stop()
		err = m.dispatcher.Close()
	})
	return err
}
