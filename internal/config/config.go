// Package config assembles the §6 configuration surface into a single
// Config value, built with functional options the way the teacher's
// NewFSRSManagerWithParams customization seam works.
package config

import (
	"github.com/flashcore/srscore/internal/domain"
	"github.com/flashcore/srscore/internal/easydays"
	"github.com/flashcore/srscore/internal/gamification"
	"github.com/flashcore/srscore/internal/session"
)

// Config is the fully-resolved set of tunables a Scheduler/StudySession
// pair is constructed from.
type Config struct {
	Algorithm domain.Algorithm
	FSRS      domain.FSRSParameters
	SM2       domain.SM2Parameters
	Steps     domain.StepConfig
	Session   session.Config
	EasyDays  easydays.Multipliers
}

// Default returns the §6 defaults: FSRS algorithm, default FSRS
// weights/retention/max-interval, default step ladders, default
// session limits, and no EasyDays shaping.
func Default() Config {
	return Config{
		Algorithm: domain.FSRS,
		FSRS:      domain.DefaultFSRSParameters(),
		SM2:       domain.DefaultSM2Parameters(),
		Steps:     domain.DefaultStepConfig(),
		Session:   session.DefaultConfig(),
		EasyDays:  easydays.Multipliers{},
	}
}

// syncSession keeps the session sub-config's EasyDays mirrored with
// the top-level setting regardless of the order WithSessionConfig and
// WithEasyDays were applied in.
func (c *Config) syncSession() {
	c.Session.EasyDays = c.EasyDays
}

// Option customizes a Config built by New.
type Option func(*Config)

// New builds a Config starting from the §6 defaults and applies opts
// in order.
func New(opts ...Option) Config {
	cfg := Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.syncSession()
	return cfg
}

// WithAlgorithm selects FSRS or SM2.
func WithAlgorithm(a domain.Algorithm) Option {
	return func(c *Config) { c.Algorithm = a }
}

// WithFSRSParameters overrides the FSRS weight vector and its two
// interval-computation knobs.
func WithFSRSParameters(p domain.FSRSParameters) Option {
	return func(c *Config) { c.FSRS = p }
}

// WithSM2Parameters overrides the legacy SM-2 knobs.
func WithSM2Parameters(p domain.SM2Parameters) Option {
	return func(c *Config) { c.SM2 = p }
}

// WithStepConfig overrides the learning/relearning step ladders and
// graduating intervals, shared by both algorithms.
func WithStepConfig(s domain.StepConfig) Option {
	return func(c *Config) { c.Steps = s }
}

// WithSessionConfig overrides the session's prefetch size, per-day
// limits, auto-bury behavior, and gamification knobs.
func WithSessionConfig(s session.Config) Option {
	return func(c *Config) { c.Session = s }
}

// WithGamification overrides just the gamification sub-config within
// the session config, leaving the rest untouched.
func WithGamification(g gamification.Config) Option {
	return func(c *Config) { c.Session.Gamification = g }
}

// WithEasyDays overrides the per-weekday multiplier map.
func WithEasyDays(m easydays.Multipliers) Option {
	return func(c *Config) { c.EasyDays = m }
}
