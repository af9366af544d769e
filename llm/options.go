package llm

import (
	"fmt"
	"maps"

	"github.com/i2y/llm-bedrock-mistral/provider"
)

// Option configures an LLM call.
type Option func(*callConfig)

// callConfig holds all configuration for a call.
type callConfig struct {
	model        string
	system       string
	options      provider.Options
	conversation *provider.Conversation
}

func newCallConfig() *callConfig {
	return &callConfig{options: provider.Options{}}
}

func (c *callConfig) apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// WithModel sets the model by ID or alias (e.g., "bmi").
func WithModel(name string) Option {
	return func(c *callConfig) {
		c.model = name
	}
}

// WithSystem sets the system instruction for the current turn.
func WithSystem(system string) Option {
	return func(c *callConfig) {
		c.system = system
	}
}

// WithOption sets a single raw model option. Values are validated by the
// model when the call is prepared.
func WithOption(key string, value any) Option {
	return func(c *callConfig) {
		c.options[key] = value
	}
}

// WithOptions merges raw model options.
func WithOptions(opts map[string]any) Option {
	return func(c *callConfig) {
		maps.Copy(c.options, opts)
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return WithOption("temperature", t)
}

// WithTopP sets the nucleus sampling parameter (0.0 to 1.0).
// Tokens are selected from the most to least probable until the sum
// of their probabilities equals this value.
func WithTopP(p float64) Option {
	return WithOption("top_p", p)
}

// WithMaxTokens sets the maximum tokens in the response.
func WithMaxTokens(n int) Option {
	return WithOption("max_tokens", n)
}

// WithConversation continues the given conversation. The completed
// response is appended to it.
func WithConversation(conv *provider.Conversation) Option {
	return func(c *callConfig) {
		c.conversation = conv
	}
}

// prepare resolves the model and validates options. Nothing here touches
// the network.
func (c *callConfig) prepare(text string) (provider.Model, *provider.Prompt, error) {
	if c.model == "" {
		return nil, nil, ErrModelRequired
	}

	m, err := provider.Get(c.model)
	if err != nil {
		return nil, nil, fmt.Errorf("getting model: %w", err)
	}

	opts, err := m.NewOptions(c.options)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid options for %s: %w", m.ModelID(), err)
	}

	return m, &provider.Prompt{
		Text:    text,
		System:  c.system,
		Options: opts,
	}, nil
}
