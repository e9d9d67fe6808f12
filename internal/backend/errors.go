package backend

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigurationError signals settings that cannot produce an engine. It is
// fatal at load time.
type ConfigurationError struct{ Msg string }

func (e *ConfigurationError) Error() string { return e.Msg }

// EngineLoadError wraps a failure to bring the engine up (binary missing,
// model not found, insufficient device memory, readiness timeout).
type EngineLoadError struct {
	Backend string
	Err     error
}

func (e *EngineLoadError) Error() string {
	return fmt.Sprintf("load %s engine: %v", e.Backend, e.Err)
}

func (e *EngineLoadError) Unwrap() error { return e.Err }

// EngineRuntimeError wraps a failure reported by a loaded engine.
type EngineRuntimeError struct {
	Backend string
	Err     error
}

func (e *EngineRuntimeError) Error() string {
	return fmt.Sprintf("%s generate: %v", e.Backend, e.Err)
}

func (e *EngineRuntimeError) Unwrap() error { return e.Err }

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsEngineLoadError reports whether err is an EngineLoadError.
func IsEngineLoadError(err error) bool {
	var le *EngineLoadError
	return errors.As(err, &le)
}

// IsEngineRuntimeError reports whether err is an EngineRuntimeError.
func IsEngineRuntimeError(err error) bool {
	var re *EngineRuntimeError
	return errors.As(err, &re)
}

// errNotLoaded is returned by Generate before Load succeeded.
var errNotLoaded = errors.New("engine not loaded")

// upstreamStatusError carries a non-2xx engine response.
type upstreamStatusError struct {
	Status string
	Body   string
}

func (e *upstreamStatusError) Error() string {
	if e.Body == "" {
		return "engine http error: " + e.Status
	}
	return "engine http error: " + e.Status + ": " + e.Body
}
