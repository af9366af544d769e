// Package provider defines the contract between the host and model plugins.
package provider

import (
	"context"
	"iter"

	"github.com/invopop/jsonschema"
)

// Model is the core abstraction for a hosted model variant.
// All model plugins must satisfy this interface.
type Model interface {
	// ModelID returns the provider-specific model identifier
	// (e.g., "mistral.mistral-7b-instruct-v0:2").
	ModelID() string

	// CanStream reports whether Execute honors stream=true.
	CanStream() bool

	// OptionsSchema describes the options NewOptions accepts.
	OptionsSchema() *jsonschema.Schema

	// NewOptions validates raw option values and fills in defaults.
	// The returned value is stored in Prompt.Options.
	NewOptions(raw Options) (any, error)

	// Execute runs one invocation and returns the output fragments.
	// The sequence is lazy: no remote call happens until it is iterated,
	// and it can only be iterated once.
	Execute(ctx context.Context, prompt *Prompt, stream bool, resp *Response, conv *Conversation) iter.Seq2[string, error]
}

// Options holds raw, unvalidated option values keyed by option name.
type Options map[string]any

// Prompt is the current user turn.
type Prompt struct {
	Text    string
	System  string
	Options any // Validated options returned by Model.NewOptions.
}

// Message represents a single role-tagged message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role represents the message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)
