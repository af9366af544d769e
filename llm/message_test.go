package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageConstructors(t *testing.T) {
	tests := []struct {
		name     string
		build    func(string) Message
		content  string
		wantRole Role
	}{
		{"system", SystemMessage, "You are a helpful assistant.", RoleSystem},
		{"user", UserMessage, "Hello, how are you?", RoleUser},
		{"assistant", AssistantMessage, "I'm fine.", RoleAssistant},
		{"empty content", UserMessage, "", RoleUser},
		{"multiline content", SystemMessage, "Line 1\nLine 2\nLine 3", RoleSystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.build(tt.content)

			assert.Equal(t, tt.wantRole, msg.Role)
			assert.Equal(t, tt.content, msg.Content)
		})
	}
}

func TestRoleValues(t *testing.T) {
	assert.Equal(t, Role("system"), RoleSystem)
	assert.Equal(t, Role("user"), RoleUser)
	assert.Equal(t, Role("assistant"), RoleAssistant)
}
