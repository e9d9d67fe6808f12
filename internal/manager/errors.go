package manager

import (
	"context"
	"errors"

	"hfserve/internal/backend"
	"hfserve/internal/guardrails"
)

// Error kinds reported by ErrorKind.
const (
	KindGuardrail     = "guardrail"
	KindConfiguration = "configuration"
	KindEngineLoad    = "engine_load"
	KindEngineRuntime = "engine_runtime"
	KindNotReady      = "not_ready"
	KindCanceled      = "canceled"
	KindInternal      = "internal"
)

// ErrNotReady is returned by Generate while the engine is loading, after a
// failed load, or after Close.
var ErrNotReady = errors.New("engine is not ready")

// ErrorKind classifies err for logs and metric labels. It does not change how
// the error is reported to clients.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case guardrails.IsViolation(err):
		return KindGuardrail
	case backend.IsConfigurationError(err):
		return KindConfiguration
	case backend.IsEngineLoadError(err):
		return KindEngineLoad
	case errors.Is(err, ErrNotReady):
		return KindNotReady
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case backend.IsEngineRuntimeError(err):
		return KindEngineRuntime
	default:
		return KindInternal
	}
}
