package manager

import (
	"context"
	"errors"
	"time"

	"hfserve/internal/backend"
	"hfserve/internal/guardrails"
	"hfserve/pkg/types"
)

// Generate validates req against the prompt policy, merges its overrides
// with the configured defaults and runs the engine. Policy rejections are
// returned before the engine is touched.
func (m *Manager) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	kind := m.settings.Backend
	if err := m.guard.ValidatePrompt(req.Prompt); err != nil {
		m.rejected(err)
		return types.GenerateResponse{}, err
	}
	opts := backend.MergeOptions(backend.Overrides{
		MaxNewTokens: req.MaxNewTokens,
		Temperature:  req.Temperature,
		TopP:         req.TopP,
	}, m.settings)
	if err := m.guard.ValidateMaxNewTokens(opts.MaxNewTokens); err != nil {
		m.rejected(err)
		return types.GenerateResponse{}, err
	}

	if !m.Ready() {
		generateRequestsTotal.WithLabelValues(kind, "not_ready").Inc()
		return types.GenerateResponse{}, ErrNotReady
	}

	if text, ok := m.cache.get(req.Prompt, opts); ok {
		responseCacheHitsTotal.Inc()
		generateRequestsTotal.WithLabelValues(kind, "cache_hit").Inc()
		m.generations.Add(1)
		return m.response(text), nil
	}

	start := time.Now()
	text, err := m.dispatcher.Generate(ctx, req.Prompt, opts)
	generateDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		ek := ErrorKind(err)
		generateRequestsTotal.WithLabelValues(kind, ek).Inc()
		m.logger.Error().Err(err).Str("kind", ek).Str("backend", kind).Dur("dur", time.Since(start)).Msg("generate failed")
		return types.GenerateResponse{}, err
	}
	generateRequestsTotal.WithLabelValues(kind, "ok").Inc()
	m.generations.Add(1)
	m.cache.put(req.Prompt, opts, text)
	m.logger.Debug().
		Str("backend", kind).
		Int("max_new_tokens", opts.MaxNewTokens).
		Float64("temperature", opts.Temperature).
		Float64("top_p", opts.TopP).
		Int("prompt_chars", len([]rune(req.Prompt))).
		Int("output_chars", len([]rune(text))).
		Dur("dur", time.Since(start)).
		Msg("generate ok")
	return m.response(text), nil
}

func (m *Manager) response(text string) types.GenerateResponse {
	return types.GenerateResponse{
		ModelID:       m.settings.ModelID,
		Backend:       m.settings.Backend,
		GeneratedText: text,
	}
}

// rejected records a policy violation. Only the rule is logged; the prompt
// and the matched term never are.
func (m *Manager) rejected(err error) {
	rule := "unknown"
	var v *guardrails.Violation
	if errors.As(err, &v) {
		rule = string(v.Rule)
	}
	guardrailRejectionsTotal.WithLabelValues(rule).Inc()
	generateRequestsTotal.WithLabelValues(m.settings.Backend, KindGuardrail).Inc()
	m.logger.Warn().Str("rule", rule).Msg("request rejected by guardrails")
}
