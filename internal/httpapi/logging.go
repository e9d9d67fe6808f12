package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger used by the HTTP layer. Nop until SetLogger.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "disabled", "":
		return LevelOff
	case "error", "warn", "fatal":
		return LevelError
	case "info":
		return LevelInfo
	case "debug", "trace":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// defaultLogLevel applies when a request carries no override.
var defaultLogLevel = LevelInfo

// SetDefaultLogLevel sets the request log level from a LOG_LEVEL value.
func SetDefaultLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logGenerateEnd emits the closing line of a /generate request. Errors are
// logged at LevelError and above; successes at LevelInfo.
func logGenerateEnd(r *http.Request, lvl LogLevel, status int, start time.Time, err error) {
	if lvl < LevelError || (err == nil && lvl < LevelInfo) {
		return
	}
	ev := zlog.Info()
	if err != nil {
		ev = zlog.Error().Err(err)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	ev.Int("status", status).Dur("dur", time.Since(start)).Msg("generate end")
}
