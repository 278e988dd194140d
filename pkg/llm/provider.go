package llm

import (
	"context"
)

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Apply resolves options on top of defaults.
func Apply(defaults Options, opts ...Option) Options {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}

// LLMProvider completes one self-contained prompt. No conversation history is
// ever sent.
type LLMProvider interface {
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

const NotConfiguredReply = "Language model client not configured."

// Unconfigured answers every call with a fixed placeholder instead of failing.
type Unconfigured struct{}

var _ LLMProvider = Unconfigured{}

func (Unconfigured) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return NotConfiguredReply, nil
}
