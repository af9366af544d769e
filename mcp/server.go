// Package mcp serves registered models and prompt templates as Model Context
// Protocol tools, so MCP clients can prompt Bedrock models directly.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/i2y/llm-bedrock-mistral/llm"
	"github.com/i2y/llm-bedrock-mistral/provider"
	"github.com/i2y/llm-bedrock-mistral/schema"
	"github.com/i2y/llm-bedrock-mistral/templates"
)

// Server exposes models as MCP tools.
type Server struct {
	server *mcp.Server
	logger *zap.Logger
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the logger used for tool calls.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a server with the given implementation name and version.
//
// Example:
//
//	srv := mcp.NewServer("bedrock-mistral", "0.1.0")
//	if err := srv.AddModel("mistral_7b", "bmi"); err != nil {
//	    return err
//	}
//	return srv.ServeStdio(ctx)
func NewServer(name, version string, opts ...Option) *Server {
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    name,
			Version: version,
		}, nil),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// promptInput is the argument object of a model tool.
type promptInput struct {
	Prompt  string         `json:"prompt" jsonschema_description:"The prompt text"`
	System  string         `json:"system,omitempty" jsonschema_description:"Optional system instruction"`
	Options map[string]any `json:"options,omitempty" jsonschema_description:"Model options"`
}

// templateInput is the argument object of a template tool.
type templateInput struct {
	Input  string            `json:"input" jsonschema_description:"Text substituted for $input"`
	Params map[string]string `json:"params,omitempty" jsonschema_description:"Template parameters"`
}

// AddModel registers a tool that prompts the named model. The model must
// already be registered; its option schema is advertised in the tool input.
func (s *Server) AddModel(toolName, modelName string) error {
	m, err := provider.Get(modelName)
	if err != nil {
		return fmt.Errorf("adding model tool %s: %w", toolName, err)
	}

	in := schema.For[promptInput]()
	if opts := m.OptionsSchema(); opts != nil {
		in.Properties.Set("options", opts)
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding input schema: %w", err)
	}

	s.server.AddTool(&mcp.Tool{
		Name:        toolName,
		Description: "Prompt " + m.ModelID(),
		InputSchema: json.RawMessage(raw),
	}, s.handler(toolName, func(ctx context.Context, args json.RawMessage) (string, error) {
		var in promptInput
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("parsing arguments: %w", err)
		}
		if in.Prompt == "" {
			return "", errors.New("prompt is required")
		}

		resp, err := llm.Call(ctx, in.Prompt,
			llm.WithModel(modelName),
			llm.WithSystem(in.System),
			llm.WithOptions(in.Options),
		)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}))
	return nil
}

// AddTemplate registers a tool that renders the template and prompts the
// template's model, or defaultModel when the template names none.
func (s *Server) AddTemplate(toolName string, t *templates.Template, defaultModel string) error {
	if t.Model == "" && defaultModel == "" {
		return fmt.Errorf("adding template tool %s: %w", toolName, llm.ErrModelRequired)
	}

	raw, err := schema.Generate[templateInput]()
	if err != nil {
		return fmt.Errorf("encoding input schema: %w", err)
	}

	s.server.AddTool(&mcp.Tool{
		Name:        toolName,
		Description: "Run the " + t.Name + " prompt template",
		InputSchema: raw,
	}, s.handler(toolName, func(ctx context.Context, args json.RawMessage) (string, error) {
		var in templateInput
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("parsing arguments: %w", err)
		}

		prompt, opts, err := t.Apply(in.Input, in.Params)
		if err != nil {
			return "", err
		}
		// Template options come after the default so its model wins.
		opts = append([]llm.Option{llm.WithModel(defaultModel)}, opts...)

		resp, err := llm.Call(ctx, prompt, opts...)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}))
	return nil
}

// Run serves requests on the transport until ctx is cancelled or the
// client disconnects.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// ServeStdio serves requests over stdin and stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

type toolFunc func(ctx context.Context, args json.RawMessage) (string, error)

// handler adapts fn to the SDK. Failures are reported to the client as
// error results rather than protocol errors.
func (s *Server) handler(toolName string, fn toolFunc) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		if args == nil {
			args = json.RawMessage("{}")
		}

		s.logger.Debug("tool call", zap.String("tool", toolName))
		text, err := fn(ctx, args)
		if err != nil {
			s.logger.Warn("tool call failed", zap.String("tool", toolName), zap.Error(err))
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
				IsError: true,
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil
	}
}
