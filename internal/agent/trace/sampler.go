package trace

import (
	"math/rand/v2"
	"strconv"

	"github.com/omteam/fitagent/server/internal/core"
)

// Config controls tracing and sampling, sourced from environment variables.
// SampleRate stays a string so an unset variable is distinguishable from an
// explicit "0"; it is parsed and clamped by the sampler.
type Config struct {
	Enabled    bool   `envconfig:"TRACE_ENABLED" default:"true"`
	SampleRate string `envconfig:"TRACE_SAMPLE_RATE"`
	AllowPII   bool   `envconfig:"TRACE_ALLOW_PII" default:"false"`
	Project    string `envconfig:"TRACE_PROJECT" default:"omteam"`
}

// Sampler decides once per request whether its model calls are instrumented.
// The decision is held constant across all nodes of that request.
type Sampler struct {
	rate     float64
	allowPII bool

	// randFloat is swapped in tests for determinism.
	randFloat func() float64
}

// NewSampler builds a sampler from config. Without an explicit override the
// rate defaults to 0.2 in production and 1.0 everywhere else; overrides are
// clamped to [0, 1].
func NewSampler(cfg Config, env core.Environment) *Sampler {
	rate := 1.0
	if env.IsProduction() {
		rate = 0.2
	}
	if cfg.SampleRate != "" {
		if v, err := strconv.ParseFloat(cfg.SampleRate, 64); err == nil {
			rate = clamp(v, 0, 1)
		}
	}
	return &Sampler{
		rate:      rate,
		allowPII:  cfg.AllowPII,
		randFloat: rand.Float64,
	}
}

// ShouldTrace reports whether this request's calls are traced. A non-empty
// personalization summary means personal data would reach the trace backend,
// so unless PII is explicitly allowed the request is never traced; privacy
// takes precedence over observability.
func (s *Sampler) ShouldTrace(contextSummary string) bool {
	if contextSummary != "" && !s.allowPII {
		return false
	}
	return s.randFloat() < s.rate
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
