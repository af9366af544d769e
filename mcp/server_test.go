package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i2y/llm-bedrock-mistral/provider"
	"github.com/i2y/llm-bedrock-mistral/templates"
)

// echoModel replies with the system and prompt text it received.
type echoModel struct {
	id string
}

func (m *echoModel) ModelID() string { return m.id }

func (m *echoModel) CanStream() bool { return true }

func (m *echoModel) OptionsSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	props.Set("temperature", &jsonschema.Schema{Type: "number"})
	return &jsonschema.Schema{Type: "object", Properties: props}
}

func (m *echoModel) NewOptions(raw provider.Options) (any, error) {
	if _, ok := raw["bad"]; ok {
		return nil, errors.New("bad is not a known option")
	}
	return raw, nil
}

func (m *echoModel) Execute(ctx context.Context, prompt *provider.Prompt, stream bool, resp *provider.Response, conv *provider.Conversation) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yield(fmt.Sprintf("[%s] %s", prompt.System, prompt.Text), nil)
	}
}

func init() {
	provider.Register(&echoModel{id: "mcp-echo"}, "echo")
}

func setupTestClient(t *testing.T, setup func(s *Server)) *mcp.ClientSession {
	t.Helper()

	s := NewServer("test-server", "1.0.0")
	setup(s)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- s.Run(ctx, serverTransport)
	}()
	t.Cleanup(func() {
		cancel()
		<-serverDone
	})

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func callText(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text, result.IsError
}

func TestAddModel_UnknownModel(t *testing.T) {
	s := NewServer("srv", "1.0.0")
	err := s.AddModel("nope", "no-such-model")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-model")
}

func TestListTools(t *testing.T) {
	session := setupTestClient(t, func(s *Server) {
		require.NoError(t, s.AddModel("echo_model", "echo"))
	})

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, result.Tools, 1)

	tool := result.Tools[0]
	assert.Equal(t, "echo_model", tool.Name)
	assert.Equal(t, "Prompt mcp-echo", tool.Description)

	raw, err := json.Marshal(tool.InputSchema)
	require.NoError(t, err)

	var in struct {
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	require.NoError(t, json.Unmarshal(raw, &in))
	assert.Contains(t, in.Properties, "prompt")
	assert.Contains(t, in.Properties, "system")
	assert.Contains(t, string(in.Properties["options"]), "temperature")
	assert.Equal(t, []string{"prompt"}, in.Required)
}

func TestModelTool(t *testing.T) {
	session := setupTestClient(t, func(s *Server) {
		require.NoError(t, s.AddModel("echo_model", "echo"))
	})

	tests := []struct {
		name    string
		args    map[string]any
		want    string
		wantErr bool
	}{
		{
			name: "prompt only",
			args: map[string]any{"prompt": "hi"},
			want: "[] hi",
		},
		{
			name: "with system and options",
			args: map[string]any{"prompt": "hi", "system": "S", "options": map[string]any{"temperature": 0.1}},
			want: "[S] hi",
		},
		{
			name:    "missing prompt",
			args:    map[string]any{},
			want:    "prompt is required",
			wantErr: true,
		},
		{
			name:    "invalid options",
			args:    map[string]any{"prompt": "hi", "options": map[string]any{"bad": 1}},
			want:    "invalid options for mcp-echo: bad is not a known option",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := callText(t, session, "echo_model", tt.args)
			assert.Equal(t, tt.wantErr, isErr)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestTemplateTool(t *testing.T) {
	tmpl, err := templates.Parse([]byte("---\nsystem: Reply in $lang\ndefaults:\n  lang: English\n---\nSummarize $input"), "summarize")
	require.NoError(t, err)

	session := setupTestClient(t, func(s *Server) {
		require.NoError(t, s.AddTemplate("summarize", tmpl, "echo"))
	})

	text, isErr := callText(t, session, "summarize", map[string]any{"input": "the news"})
	assert.False(t, isErr)
	assert.Equal(t, "[Reply in English] Summarize the news", text)

	text, isErr = callText(t, session, "summarize", map[string]any{
		"input":  "the news",
		"params": map[string]any{"lang": "Dutch"},
	})
	assert.False(t, isErr)
	assert.Equal(t, "[Reply in Dutch] Summarize the news", text)
}

func TestTemplateTool_MissingParameter(t *testing.T) {
	tmpl := &templates.Template{Name: "t", Prompt: "$input in $style"}

	session := setupTestClient(t, func(s *Server) {
		require.NoError(t, s.AddTemplate("styled", tmpl, "echo"))
	})

	text, isErr := callText(t, session, "styled", map[string]any{"input": "x"})
	assert.True(t, isErr)
	assert.Equal(t, `template t: missing parameter "style"`, text)
}

func TestAddTemplate_RequiresModel(t *testing.T) {
	s := NewServer("srv", "1.0.0")
	err := s.AddTemplate("t", &templates.Template{Name: "t", Prompt: "$input"}, "")
	assert.Error(t, err)
}

func TestRun_ContextCancelled(t *testing.T) {
	s := NewServer("srv", "1.0.0")
	serverTransport, _ := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx, serverTransport)
	assert.ErrorIs(t, err, context.Canceled)
}
