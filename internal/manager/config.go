package manager

import (
	"context"

	"github.com/rs/zerolog"

	"hfserve/internal/backend"
	"hfserve/internal/config"
)

// Dispatcher is the engine handle the manager drives. *backend.Dispatcher
// implements it.
type Dispatcher interface {
	Load(ctx context.Context) error
	Generate(ctx context.Context, prompt string, opts backend.GenerationOptions) (string, error)
	Close() error
	Info() (backend.EngineInfo, bool)
	QuantizationLabel() string
}

// Config encapsulates everything needed to construct a Manager.
type Config struct {
	Settings config.Settings
	// Dispatcher defaults to backend.NewDispatcher(Settings).
	Dispatcher Dispatcher
	Logger     zerolog.Logger
	// Publisher receives manager and engine lifecycle events; nil keeps them
	// in a backend.MemoryPublisher.
	Publisher backend.EventPublisher
}
