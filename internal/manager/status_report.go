package manager

import (
	"time"

	"hfserve/pkg/types"
)

// Health returns the /health payload. It reflects configuration only; use
// Ready for engine readiness.
func (m *Manager) Health() types.HealthResponse {
	return types.HealthResponse{
		Status:  "ok",
		ModelID: m.settings.ModelID,
		Backend: m.settings.Backend,
	}
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	state, lastErr := m.state, m.lastErr
	m.mu.RUnlock()
	now := time.Now()
	resp := types.StatusResponse{
		State:                string(state),
		ModelID:              m.settings.ModelID,
		Backend:              m.settings.Backend,
		Quantization:         m.dispatcher.QuantizationLabel(),
		GuardrailsEnabled:    m.guard.Enabled(),
		ResponseCacheEnabled: m.cache.enabled(),
		LastError:            lastErr,
		UptimeSeconds:        int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix:       now.Unix(),
		GenerationsTotal:     m.generations.Load(),
	}
	if state == StateReady {
		if info, ok := m.dispatcher.Info(); ok {
			resp.Engine = &types.EngineStatus{URL: info.URL, PID: info.PID, Spawned: info.Spawned}
		}
	}
	return resp
}
