package provider

import "strings"

// Response accumulates the output of one invocation.
type Response struct {
	Model  string
	Prompt *Prompt

	// UserText is the user content actually sent for this turn, which may
	// differ from Prompt.Text. Later turns replay it as history. Empty means
	// Prompt.Text was sent as is.
	UserText string

	// PromptJSON is the exact request body sent to the remote endpoint.
	PromptJSON string

	// ResponseJSON is the raw decoded reply. Streaming calls store the
	// decoded chunk events in arrival order.
	ResponseJSON any

	chunks []string
}

// NewResponse creates an empty response for the given model and prompt.
func NewResponse(model string, prompt *Prompt) *Response {
	return &Response{
		Model:  model,
		Prompt: prompt,
	}
}

// Append records an output fragment.
func (r *Response) Append(fragment string) {
	r.chunks = append(r.chunks, fragment)
}

// Chunks returns the fragments recorded so far.
func (r *Response) Chunks() []string {
	return append([]string(nil), r.chunks...)
}

// Text returns the concatenated fragments.
func (r *Response) Text() string {
	return strings.Join(r.chunks, "")
}

// Conversation is an ordered history of completed turns.
// Each turn pairs a prior prompt with the model's response text.
type Conversation struct {
	Model     string
	responses []*Response
}

// NewConversation creates an empty conversation, optionally seeded with turns.
func NewConversation(model string, responses ...*Response) *Conversation {
	return &Conversation{
		Model:     model,
		responses: append([]*Response(nil), responses...),
	}
}

// Append adds a completed turn.
func (c *Conversation) Append(resp *Response) {
	c.responses = append(c.responses, resp)
}

// Responses returns the turns in order.
func (c *Conversation) Responses() []*Response {
	if c == nil {
		return nil
	}
	return append([]*Response(nil), c.responses...)
}

// Len returns the number of turns. A nil conversation has none.
func (c *Conversation) Len() int {
	if c == nil {
		return 0
	}
	return len(c.responses)
}
