package llm

import (
	"context"

	"github.com/i2y/llm-bedrock-mistral/provider"
)

// Conversation carries multi-turn history for one model.
// Each completed response is appended and sent as context with the next
// prompt.
//
// Example:
//
//	conv := llm.NewConversation("bmi", llm.WithSystem("Answer in one line"))
//	first, _ := conv.Prompt(ctx, "Name a prime number")
//	second, _ := conv.Prompt(ctx, "And the next one?")
type Conversation struct {
	model   string
	opts    []Option
	history *provider.Conversation
}

// NewConversation starts an empty conversation.
// The options apply to every turn unless overridden per prompt.
func NewConversation(model string, opts ...Option) *Conversation {
	return &Conversation{
		model:   model,
		opts:    opts,
		history: provider.NewConversation(model),
	}
}

// Prompt sends the next turn and waits for the full response.
func (c *Conversation) Prompt(ctx context.Context, prompt string, opts ...Option) (*Response, error) {
	return Call(ctx, prompt, c.mergeOptions(opts)...)
}

// PromptStream sends the next turn and streams the response. The turn
// becomes part of the history once the stream is read to the end.
func (c *Conversation) PromptStream(ctx context.Context, prompt string, opts ...Option) (*Stream, error) {
	return CallStream(ctx, prompt, c.mergeOptions(opts)...)
}

// History returns the underlying turn history.
func (c *Conversation) History() *provider.Conversation {
	return c.history
}

// Transcript returns every turn as literal messages, repeating each
// turn's system instruction where it was set.
func (c *Conversation) Transcript() []Message {
	var messages []Message
	for _, resp := range c.history.Responses() {
		if resp.Prompt != nil {
			if resp.Prompt.System != "" {
				messages = append(messages, SystemMessage(resp.Prompt.System))
			}
			messages = append(messages, UserMessage(resp.Prompt.Text))
		}
		messages = append(messages, AssistantMessage(resp.Text()))
	}
	return messages
}

func (c *Conversation) mergeOptions(opts []Option) []Option {
	all := make([]Option, 0, len(c.opts)+len(opts)+2)
	all = append(all, WithModel(c.model))
	all = append(all, c.opts...)
	all = append(all, opts...)
	all = append(all, WithConversation(c.history))
	return all
}
