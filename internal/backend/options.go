package backend

import "hfserve/internal/config"

// GenerationOptions is the concrete sampling parameter set for one request.
type GenerationOptions struct {
	MaxNewTokens int
	Temperature  float64
	TopP         float64
}

// Overrides holds a request's optional sampling values. A nil field means
// "use the process default"; a non-nil zero is a real value.
type Overrides struct {
	MaxNewTokens *int
	Temperature  *float64
	TopP         *float64
}

// DefaultOptions returns the process-wide sampling defaults.
func DefaultOptions(s config.Settings) GenerationOptions {
	return GenerationOptions{
		MaxNewTokens: s.MaxNewTokens,
		Temperature:  s.Temperature,
		TopP:         s.TopP,
	}
}

// MergeOptions fills every unset override from settings. Range checks are the
// caller's job.
func MergeOptions(o Overrides, s config.Settings) GenerationOptions {
	opts := DefaultOptions(s)
	if o.MaxNewTokens != nil {
		opts.MaxNewTokens = *o.MaxNewTokens
	}
	if o.Temperature != nil {
		opts.Temperature = *o.Temperature
	}
	if o.TopP != nil {
		opts.TopP = *o.TopP
	}
	return opts
}
