package config

import (
	"net"
	"strconv"
	"strings"
)

// Supported values of INFERENCE_BACKEND.
const (
	BackendVLLM         = "vllm"
	BackendTransformers = "transformers"
)

// Settings is the process-wide configuration. It is built once by Resolve and
// passed by value; nothing mutates it afterwards.
type Settings struct {
	ModelID string `yaml:"model_id" json:"model_id"`
	Backend string `yaml:"inference_backend" json:"inference_backend"`

	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`

	MaxNewTokens int     `yaml:"max_new_tokens" json:"max_new_tokens"`
	Temperature  float64 `yaml:"temperature" json:"temperature"`
	TopP         float64 `yaml:"top_p" json:"top_p"`

	TrustRemoteCode      bool    `yaml:"trust_remote_code" json:"trust_remote_code"`
	TensorParallelSize   int     `yaml:"tensor_parallel_size" json:"tensor_parallel_size"`
	GPUMemoryUtilization float64 `yaml:"gpu_memory_utilization" json:"gpu_memory_utilization"`

	Quantization     string `yaml:"quantization" json:"quantization"`
	QuantizationBits int    `yaml:"quantization_bits" json:"quantization_bits"`

	EnableGuardrails    bool   `yaml:"enable_guardrails" json:"enable_guardrails"`
	MaxPromptChars      int    `yaml:"max_prompt_chars" json:"max_prompt_chars"`
	MaxRequestNewTokens int    `yaml:"max_request_new_tokens" json:"max_request_new_tokens"`
	BlockedTerms        string `yaml:"blocked_terms" json:"blocked_terms"`

	// Engine runtime. An empty EngineURL means the engine is spawned locally.
	EngineURL                 string `yaml:"engine_url" json:"engine_url"`
	EngineBin                 string `yaml:"engine_bin" json:"engine_bin"`
	EngineHost                string `yaml:"engine_host" json:"engine_host"`
	EnginePort                int    `yaml:"engine_port" json:"engine_port"`
	EngineAPIKey              string `yaml:"-" json:"-"`
	EngineReadyTimeoutSeconds int    `yaml:"engine_ready_timeout_seconds" json:"engine_ready_timeout_seconds"`

	// HTTP transport.
	LogLevel               string `yaml:"log_level" json:"log_level"`
	LogFormat              string `yaml:"log_format" json:"log_format"`
	MaxBodyBytes           int64  `yaml:"max_body_bytes" json:"max_body_bytes"`
	GenerateTimeoutSeconds int    `yaml:"generate_timeout_seconds" json:"generate_timeout_seconds"`
	CORSEnabled            bool   `yaml:"cors_enabled" json:"cors_enabled"`
	CORSAllowedOrigins     string `yaml:"cors_allowed_origins" json:"cors_allowed_origins"`
	CORSAllowedMethods     string `yaml:"cors_allowed_methods" json:"cors_allowed_methods"`
	CORSAllowedHeaders     string `yaml:"cors_allowed_headers" json:"cors_allowed_headers"`

	// Deterministic (temperature 0) response cache. A zero TTL disables it.
	ResponseCacheTTLSeconds int `yaml:"response_cache_ttl_seconds" json:"response_cache_ttl_seconds"`
	ResponseCacheCapacity   int `yaml:"response_cache_capacity" json:"response_cache_capacity"`
}

// Defaults returns the settings used when no source provides a value.
func Defaults() Settings {
	return Settings{
		ModelID:              "gpt2",
		Backend:              BackendVLLM,
		Host:                 "0.0.0.0",
		Port:                 8000,
		MaxNewTokens:         128,
		Temperature:          0.7,
		TopP:                 0.95,
		TrustRemoteCode:      false,
		TensorParallelSize:   1,
		GPUMemoryUtilization: 0.9,
		Quantization:         "none",
		QuantizationBits:     0,
		EnableGuardrails:     true,
		MaxPromptChars:       4000,
		MaxRequestNewTokens:  512,
		BlockedTerms:         "",

		EngineHost:                "127.0.0.1",
		EngineReadyTimeoutSeconds: 600,

		LogLevel:           "info",
		LogFormat:          "json",
		MaxBodyBytes:       1 << 20,
		CORSAllowedOrigins: "*",
		CORSAllowedMethods: "GET,POST,OPTIONS",
		CORSAllowedHeaders: "Content-Type,Authorization",

		ResponseCacheCapacity: 1024,
	}
}

// Resolve builds Settings from an environment-style key/value mapping.
// Absent keys and values that fail to parse fall back to Defaults; Resolve
// never fails.
func Resolve(raw map[string]string) Settings {
	d := Defaults()
	src := source(raw)
	return Settings{
		ModelID: src.stringOr("MODEL_ID", d.ModelID),
		Backend: strings.ToLower(strings.TrimSpace(src.stringOr("INFERENCE_BACKEND", d.Backend))),

		Host: src.stringOr("HOST", d.Host),
		Port: src.intOr("PORT", d.Port),

		MaxNewTokens: src.intOr("MAX_NEW_TOKENS", d.MaxNewTokens),
		Temperature:  src.floatOr("TEMPERATURE", d.Temperature),
		TopP:         src.floatOr("TOP_P", d.TopP),

		TrustRemoteCode:      src.boolOr("TRUST_REMOTE_CODE", d.TrustRemoteCode),
		TensorParallelSize:   src.intOr("TENSOR_PARALLEL_SIZE", d.TensorParallelSize),
		GPUMemoryUtilization: src.floatOr("GPU_MEMORY_UTILIZATION", d.GPUMemoryUtilization),

		Quantization:     strings.ToLower(src.stringOr("QUANTIZATION", d.Quantization)),
		QuantizationBits: src.intOr("QUANTIZATION_BITS", d.QuantizationBits),

		EnableGuardrails:    src.boolOr("ENABLE_GUARDRAILS", d.EnableGuardrails),
		MaxPromptChars:      src.intOr("MAX_PROMPT_CHARS", d.MaxPromptChars),
		MaxRequestNewTokens: src.intOr("MAX_REQUEST_NEW_TOKENS", d.MaxRequestNewTokens),
		BlockedTerms:        src.stringOr("BLOCKED_TERMS", d.BlockedTerms),

		EngineURL:                 strings.TrimSpace(src.stringOr("ENGINE_URL", d.EngineURL)),
		EngineBin:                 strings.TrimSpace(src.stringOr("ENGINE_BIN", d.EngineBin)),
		EngineHost:                src.stringOr("ENGINE_HOST", d.EngineHost),
		EnginePort:                src.intOr("ENGINE_PORT", d.EnginePort),
		EngineAPIKey:              src.stringOr("ENGINE_API_KEY", d.EngineAPIKey),
		EngineReadyTimeoutSeconds: src.intOr("ENGINE_READY_TIMEOUT_SECONDS", d.EngineReadyTimeoutSeconds),

		LogLevel:               strings.ToLower(src.stringOr("LOG_LEVEL", d.LogLevel)),
		LogFormat:              strings.ToLower(src.stringOr("LOG_FORMAT", d.LogFormat)),
		MaxBodyBytes:           int64(src.intOr("MAX_BODY_BYTES", int(d.MaxBodyBytes))),
		GenerateTimeoutSeconds: src.intOr("GENERATE_TIMEOUT_SECONDS", d.GenerateTimeoutSeconds),
		CORSEnabled:            src.boolOr("CORS_ENABLED", d.CORSEnabled),
		CORSAllowedOrigins:     src.stringOr("CORS_ALLOWED_ORIGINS", d.CORSAllowedOrigins),
		CORSAllowedMethods:     src.stringOr("CORS_ALLOWED_METHODS", d.CORSAllowedMethods),
		CORSAllowedHeaders:     src.stringOr("CORS_ALLOWED_HEADERS", d.CORSAllowedHeaders),

		ResponseCacheTTLSeconds: src.intOr("RESPONSE_CACHE_TTL_SECONDS", d.ResponseCacheTTLSeconds),
		ResponseCacheCapacity:   src.intOr("RESPONSE_CACHE_CAPACITY", d.ResponseCacheCapacity),
	}
}

// Addr returns the HTTP listen address.
func (s Settings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SplitCSV splits a comma-separated list, trimming entries and dropping empties.
func SplitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

type source map[string]string

func (s source) stringOr(key, def string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return def
}

func (s source) intOr(key string, def int) int {
	v, ok := s[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func (s source) floatOr(key string, def float64) float64 {
	v, ok := s[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// boolOr treats a present value as true only for 1/true/yes/y; absence keeps def.
func (s source) boolOr(key string, def bool) bool {
	v, ok := s[key]
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}
