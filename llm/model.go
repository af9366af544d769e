package llm

import (
	"context"

	"github.com/invopop/jsonschema"

	"github.com/i2y/llm-bedrock-mistral/provider"
)

// Model represents a registered model with default options.
// It provides a convenient way to reuse common configuration.
//
// Example:
//
//	model := llm.NewModel("bedrock-mistral-7b",
//	    llm.WithTemperature(0.2),
//	)
//
//	resp, err := model.Call(ctx, "Tell me a joke")
type Model struct {
	name     string
	baseOpts []Option
}

// NewModel creates a new Model for the given model ID or alias.
// Additional options can be provided as default configuration.
func NewModel(name string, opts ...Option) *Model {
	return &Model{
		name:     name,
		baseOpts: opts,
	}
}

// Call makes a call using this model's configuration.
// Per-call options override the model's base options.
func (m *Model) Call(ctx context.Context, prompt string, opts ...Option) (*Response, error) {
	return Call(ctx, prompt, m.mergeOptions(opts)...)
}

// CallStream makes a streaming call using this model's configuration.
func (m *Model) CallStream(ctx context.Context, prompt string, opts ...Option) (*Stream, error) {
	return CallStream(ctx, prompt, m.mergeOptions(opts)...)
}

// Conversation starts a conversation that inherits this model's options.
func (m *Model) Conversation(opts ...Option) *Conversation {
	all := make([]Option, 0, len(m.baseOpts)+len(opts))
	all = append(all, m.baseOpts...)
	all = append(all, opts...)
	return NewConversation(m.name, all...)
}

// OptionsSchema returns the JSON Schema of the model's options.
func (m *Model) OptionsSchema() (*jsonschema.Schema, error) {
	p, err := provider.Get(m.name)
	if err != nil {
		return nil, err
	}
	return p.OptionsSchema(), nil
}

// mergeOptions combines base options with per-call options.
func (m *Model) mergeOptions(opts []Option) []Option {
	all := make([]Option, 0, len(m.baseOpts)+len(opts)+1)
	all = append(all, WithModel(m.name))
	all = append(all, m.baseOpts...)
	all = append(all, opts...) // Per-call opts override base opts
	return all
}
