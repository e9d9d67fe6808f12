package types

// GenerateRequest is the body of POST /generate. Unset sampling fields fall
// back to the server defaults; an explicit zero is honored.
type GenerateRequest struct {
	// Required prompt text to continue.
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt" example:"Write a haiku about the ocean."`
	// Maximum number of new tokens to generate (>= 1).
	// example: 64
	MaxNewTokens *int `json:"max_new_tokens,omitempty" example:"64"`
	// Sampling temperature (>= 0). 0 selects greedy decoding.
	// example: 0.7
	Temperature *float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability in (0, 1].
	// example: 0.95
	TopP *float64 `json:"top_p,omitempty" example:"0.95"`
}

// GenerateResponse is returned by POST /generate.
type GenerateResponse struct {
	// Model identifier the server was started with.
	// example: gpt2
	ModelID string `json:"model_id" example:"gpt2"`
	// Backend kind that produced the text.
	// example: vllm
	Backend string `json:"backend" example:"vllm"`
	// Newly generated text, without the prompt.
	// example:  The waves fold in light
	GeneratedText string `json:"generated_text" example:" The waves fold in light"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// example: ok
	Status string `json:"status" example:"ok"`
	// example: gpt2
	ModelID string `json:"model_id" example:"gpt2"`
	// example: vllm
	Backend string `json:"backend" example:"vllm"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: prompt exceeds MAX_PROMPT_CHARS=4000
	Detail string `json:"detail" example:"prompt exceeds MAX_PROMPT_CHARS=4000"`
	// HTTP status code.
	// example: 500
	Code int `json:"code" example:"500"`
}

// EngineStatus describes the engine process behind the server.
type EngineStatus struct {
	// Base URL of the engine HTTP API.
	// example: http://127.0.0.1:41234
	URL string `json:"url,omitempty" example:"http://127.0.0.1:41234"`
	// Process ID when the engine was spawned by this server.
	// example: 12345
	PID int `json:"pid,omitempty" example:"12345"`
	// True when the engine process is owned by this server.
	// example: true
	Spawned bool `json:"spawned" example:"true"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Lifecycle state: loading, ready, error or closed.
	// example: ready
	State string `json:"state" example:"ready"`
	// example: gpt2
	ModelID string `json:"model_id" example:"gpt2"`
	// example: vllm
	Backend string `json:"backend" example:"vllm"`
	// Resolved quantization label.
	// example: none
	Quantization string `json:"quantization" example:"none"`
	// Engine endpoint details, present once loaded.
	Engine *EngineStatus `json:"engine,omitempty"`
	// Whether prompt policy checks are active.
	// example: true
	GuardrailsEnabled bool `json:"guardrails_enabled" example:"true"`
	// Whether deterministic responses are cached.
	// example: false
	ResponseCacheEnabled bool `json:"response_cache_enabled" example:"false"`
	// Last load error, if any.
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Completed generate calls since start.
	// example: 42
	GenerationsTotal uint64 `json:"generations_total" example:"42"`
}
