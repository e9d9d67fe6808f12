package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"hfserve/internal/config"
)

// Engine is a loaded, ready-to-use generation backend.
type Engine interface {
	// Generate returns the newly generated text for prompt.
	Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error)
	// Close releases the engine; spawned processes are stopped.
	Close() error
}

// LoadSpec is the load-time configuration handed to an engine loader. Fields
// that a backend does not use are left zero.
type LoadSpec struct {
	ModelID         string
	TrustRemoteCode bool

	// vLLM
	TensorParallelSize   int
	GPUMemoryUtilization float64
	Quantization         string // resolved method, "" for none

	// transformers
	DeviceMap          string
	QuantizationConfig *BitsAndBytesConfig
}

// Runtime describes where the engine runs and how to reach it.
type Runtime struct {
	// URL of an already running engine. Empty means spawn Bin locally.
	URL          string
	Bin          string
	Host         string
	Port         int
	APIKey       string
	ReadyTimeout time.Duration

	HTTPClient *http.Client
	Logger     zerolog.Logger
	Publisher  EventPublisher
}

// LoaderFunc constructs an engine for one backend kind.
type LoaderFunc func(ctx context.Context, spec LoadSpec, rt Runtime) (Engine, error)

// defaultLoaders maps backend kinds to their engine constructors.
func defaultLoaders() map[string]LoaderFunc {
	return map[string]LoaderFunc{
		config.BackendVLLM:         loadVLLM,
		config.BackendTransformers: loadTGI,
	}
}

// remote is shared by the HTTP engines: a base URL plus an optional launcher
// owning the process behind it.
type remote struct {
	backend  string
	baseURL  string
	apiKey   string
	client   *http.Client
	launcher *Launcher
}

// connect either attaches to rt.URL or spawns the engine via bin/args.
func connect(ctx context.Context, name string, rt Runtime, defaultBin string, args func(host string, port int) []string) (*remote, error) {
	client := rt.HTTPClient
	if client == nil {
		client = newUpstreamClient(10 * time.Second)
	}
	r := &remote{backend: name, apiKey: rt.APIKey, client: client}
	if rt.URL != "" {
		r.baseURL = trimBase(rt.URL)
		if err := waitHealthy(ctx, client, r.baseURL, rt.ReadyTimeout, nil); err != nil {
			return nil, err
		}
		rt.Logger.Info().Str("backend", name).Str("url", r.baseURL).Msg("attached to engine")
		return r, nil
	}
	bin := rt.Bin
	if bin == "" {
		bin = defaultBin
	}
	l := &Launcher{
		Name:         name,
		Bin:          bin,
		Args:         args,
		Host:         rt.Host,
		Port:         rt.Port,
		ReadyTimeout: rt.ReadyTimeout,
		HTTPClient:   client,
		Logger:       rt.Logger,
		Publisher:    rt.Publisher,
	}
	base, err := l.Start(ctx)
	if err != nil {
		return nil, err
	}
	r.baseURL = base
	r.launcher = l
	return r, nil
}

// EngineInfo describes where a loaded engine lives.
type EngineInfo struct {
	URL     string
	PID     int
	Spawned bool
}

func (r *remote) info() EngineInfo {
	if r.launcher == nil {
		return EngineInfo{URL: r.baseURL}
	}
	pid, base, _ := r.launcher.Info()
	return EngineInfo{URL: base, PID: pid, Spawned: true}
}

func (r *remote) Close() error {
	if r.launcher == nil {
		return nil
	}
	return r.launcher.Stop()
}
