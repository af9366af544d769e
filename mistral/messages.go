package mistral

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/i2y/llm-bedrock-mistral/provider"
)

const (
	instOpen  = "<s>[INST]"
	instClose = "[/INST]"
)

// BuildMessages flattens a prompt and its conversation history into
// role-tagged messages. A system message is emitted only where the system
// instruction changes; the sequence always ends with the current user turn.
func BuildMessages(prompt *provider.Prompt, conv *provider.Conversation) []provider.Message {
	return buildMessages(prompt.Text, prompt.System, conv)
}

func buildMessages(text, system string, conv *provider.Conversation) []provider.Message {
	var messages []provider.Message

	if conv.Len() == 0 {
		if system != "" {
			messages = append(messages, provider.Message{Role: provider.RoleSystem, Content: system})
		}
		return append(messages, provider.Message{Role: provider.RoleUser, Content: text})
	}

	current := ""
	for _, prev := range conv.Responses() {
		var prevText, prevSystem string
		if prev.Prompt != nil {
			prevText, prevSystem = prev.Prompt.Text, prev.Prompt.System
		}
		if prev.UserText != "" {
			prevText = prev.UserText
		}

		if prevSystem != "" && prevSystem != current {
			messages = append(messages, provider.Message{Role: provider.RoleSystem, Content: prevSystem})
			current = prevSystem
		}
		messages = append(messages,
			provider.Message{Role: provider.RoleUser, Content: prevText},
			provider.Message{Role: provider.RoleAssistant, Content: prev.Text()},
		)
	}

	if system != "" && system != current {
		messages = append(messages, provider.Message{Role: provider.RoleSystem, Content: system})
	}
	return append(messages, provider.Message{Role: provider.RoleUser, Content: text})
}

// requestBody is the payload for Mistral text completion on Bedrock.
// Field order is the order sent on the wire.
type requestBody struct {
	MaxTokens   int     `json:"max_tokens"`
	Prompt      string  `json:"prompt"`
	TopP        float64 `json:"top_p"`
	Temperature float64 `json:"temperature"`
}

// encode writes the body with the same separators and escaping as the
// message array, so the bytes match a Python json.dumps of the same dict.
func (b requestBody) encode() []byte {
	var sb strings.Builder
	sb.WriteString(`{"max_tokens": `)
	sb.WriteString(strconv.Itoa(b.MaxTokens))
	sb.WriteString(`, "prompt": `)
	writeASCIIString(&sb, b.Prompt)
	sb.WriteString(`, "top_p": `)
	sb.WriteString(formatNumber(b.TopP))
	sb.WriteString(`, "temperature": `)
	sb.WriteString(formatNumber(b.Temperature))
	sb.WriteByte('}')
	return []byte(sb.String())
}

// formatNumber renders integral values without a fraction and others in
// shortest form, switching to an exponent below 1e-4.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// userText is the user content sent for the current turn. Models that
// ignore system role content get the system text prepended, so it appears
// twice in the prompt.
func userText(modelID string, prompt *provider.Prompt) string {
	if prompt.System != "" && systemInText[modelID] {
		return prompt.System + "\n" + prompt.Text
	}
	return prompt.Text
}

// buildBody encodes the request body for one invocation.
func buildBody(modelID string, prompt *provider.Prompt, opts Options, conv *provider.Conversation) []byte {
	messages := buildMessages(userText(modelID, prompt), prompt.System, conv)

	return requestBody{
		MaxTokens:   opts.MaxTokens,
		Prompt:      instOpen + encodeMessages(messages) + instClose,
		TopP:        opts.TopP,
		Temperature: opts.Temperature,
	}.encode()
}

// encodeMessages renders messages the way Python's json.dumps does with
// default settings: ", " and ": " separators and ASCII-only output.
// The model sees these bytes verbatim inside the instruction markers.
func encodeMessages(messages []provider.Message) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, m := range messages {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(`{"role": `)
		writeASCIIString(&b, string(m.Role))
		b.WriteString(`, "content": `)
		writeASCIIString(&b, m.Content)
		b.WriteByte('}')
	}
	b.WriteByte(']')
	return b.String()
}

func writeASCIIString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r >= 0x20 && r <= 0x7e:
				b.WriteRune(r)
			case r > 0xffff:
				hi, lo := utf16.EncodeRune(r)
				fmt.Fprintf(b, `\u%04x\u%04x`, hi, lo)
			default:
				fmt.Fprintf(b, `\u%04x`, r)
			}
		}
	}
	b.WriteByte('"')
}
