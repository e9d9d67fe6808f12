package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"hfserve/internal/config"
)

// Dispatcher owns the single engine handle for the process. Load is called
// once at startup; Generate may then be called concurrently and relies on the
// engine for any synchronization.
type Dispatcher struct {
	settings  config.Settings
	loaders   map[string]LoaderFunc
	client    *http.Client
	logger    zerolog.Logger
	publisher EventPublisher

	kind   string
	engine Engine
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLoader replaces the engine constructor for a backend kind.
func WithLoader(kind string, fn LoaderFunc) DispatcherOption {
	return func(d *Dispatcher) { d.loaders[kind] = fn }
}

// WithHTTPClient sets the client used to reach the engine.
func WithHTTPClient(c *http.Client) DispatcherOption {
	return func(d *Dispatcher) { d.client = c }
}

// WithLogger sets the structured logger.
func WithLogger(l zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// WithPublisher installs an EventPublisher for engine lifecycle events.
func WithPublisher(p EventPublisher) DispatcherOption {
	return func(d *Dispatcher) {
		if p == nil {
			p = noopPublisher{}
		}
		d.publisher = p
	}
}

// NewDispatcher constructs an unloaded dispatcher for s.
func NewDispatcher(s config.Settings, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		settings:  s,
		loaders:   defaultLoaders(),
		logger:    zerolog.Nop(),
		publisher: noopPublisher{},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// LoadSpecFor resolves the backend kind and load-time configuration from
// settings without starting anything.
func LoadSpecFor(s config.Settings) (string, LoadSpec, error) {
	switch s.Backend {
	case config.BackendVLLM:
		q, _ := ResolveVLLMQuantization(s.Quantization)
		return config.BackendVLLM, LoadSpec{
			ModelID:              s.ModelID,
			TrustRemoteCode:      s.TrustRemoteCode,
			TensorParallelSize:   s.TensorParallelSize,
			GPUMemoryUtilization: s.GPUMemoryUtilization,
			Quantization:         q,
		}, nil
	case config.BackendTransformers:
		bits := ResolveTransformersBits(s.QuantizationBits, s.Quantization)
		return config.BackendTransformers, LoadSpec{
			ModelID:            s.ModelID,
			TrustRemoteCode:    s.TrustRemoteCode,
			DeviceMap:          "auto",
			QuantizationConfig: bitsAndBytesFor(bits),
		}, nil
	default:
		return "", LoadSpec{}, &ConfigurationError{
			Msg: fmt.Sprintf("backend must be either 'vllm' or 'transformers', got %q", s.Backend),
		}
	}
}

// Load brings up the configured engine. It must be called exactly once,
// before any Generate.
func (d *Dispatcher) Load(ctx context.Context) error {
	kind, spec, err := LoadSpecFor(d.settings)
	if err != nil {
		return err
	}
	loader, ok := d.loaders[kind]
	if !ok {
		return &ConfigurationError{Msg: "no engine registered for backend " + kind}
	}
	d.logger.Info().
		Str("backend", kind).
		Str("model_id", spec.ModelID).
		Str("quantization", quantizationLabel(spec)).
		Bool("attach", d.settings.EngineURL != "").
		Msg("loading engine")
	start := time.Now()
	eng, err := loader(ctx, spec, d.runtime())
	if err != nil {
		return &EngineLoadError{Backend: kind, Err: err}
	}
	d.kind, d.engine = kind, eng
	d.logger.Info().Str("backend", kind).Dur("dur", time.Since(start)).Msg("engine loaded")
	return nil
}

func (d *Dispatcher) runtime() Runtime {
	s := d.settings
	return Runtime{
		URL:          s.EngineURL,
		Bin:          s.EngineBin,
		Host:         s.EngineHost,
		Port:         s.EnginePort,
		APIKey:       s.EngineAPIKey,
		ReadyTimeout: time.Duration(s.EngineReadyTimeoutSeconds) * time.Second,
		HTTPClient:   d.client,
		Logger:       d.logger,
		Publisher:    d.publisher,
	}
}

// Generate runs prompt on the loaded engine. Engine failures are returned as
// EngineRuntimeError; context cancellation is returned as is.
func (d *Dispatcher) Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	if d.engine == nil {
		return "", errNotLoaded
	}
	out, err := d.engine.Generate(ctx, prompt, opts)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return "", err
		}
		return "", &EngineRuntimeError{Backend: d.kind, Err: err}
	}
	return out, nil
}

// Kind returns the loaded backend kind, or "" before Load.
func (d *Dispatcher) Kind() string { return d.kind }

// Loaded reports whether Load succeeded.
func (d *Dispatcher) Loaded() bool { return d.engine != nil }

// Info reports the engine endpoint. ok is false before Load or for engines
// that do not expose one.
func (d *Dispatcher) Info() (info EngineInfo, ok bool) {
	ie, ok := d.engine.(interface{ info() EngineInfo })
	if !ok {
		return EngineInfo{}, false
	}
	return ie.info(), true
}

// QuantizationLabel is the resolved quantization for logs and status.
func (d *Dispatcher) QuantizationLabel() string {
	_, spec, err := LoadSpecFor(d.settings)
	if err != nil {
		return "none"
	}
	return quantizationLabel(spec)
}

// Close releases the engine. It is safe to call before Load.
func (d *Dispatcher) Close() error {
	if d.engine == nil {
		return nil
	}
	return d.engine.Close()
}

func quantizationLabel(spec LoadSpec) string {
	if spec.Quantization != "" {
		return spec.Quantization
	}
	if q := spec.QuantizationConfig.tgiQuantize(); q != "" {
		return q
	}
	return "none"
}
