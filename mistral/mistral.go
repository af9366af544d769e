// Package mistral provides Mistral models hosted on Amazon Bedrock.
//
// Importing the package registers two models:
//
//	mistral.mistral-7b-instruct-v0:2    aliases bedrock-mistral-7b, bmi
//	mistral.mixtral-8x7b-instruct-v0:1  aliases bedrock-mistral-8x7b, bm8x7bi
package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/invopop/jsonschema"
	"go.uber.org/zap"

	"github.com/i2y/llm-bedrock-mistral/provider"
	"github.com/i2y/llm-bedrock-mistral/schema"
)

// Model identifiers on Bedrock.
const (
	Mistral7BInstruct   = "mistral.mistral-7b-instruct-v0:2"
	Mixtral8x7BInstruct = "mistral.mixtral-8x7b-instruct-v0:1"
)

const chunkTypeDelta = "content_block_delta"

// systemInText lists models that ignore system role content and need the
// system instruction repeated in the user turn.
var systemInText = map[string]bool{
	Mistral7BInstruct:   true,
	Mixtral8x7BInstruct: true,
}

func init() {
	Register()
}

// Register (re)registers both models with the given options, replacing the
// defaults installed at import time.
func Register(opts ...ModelOption) {
	provider.Register(New(Mistral7BInstruct, opts...), "bedrock-mistral-7b", "bmi")
	provider.Register(New(Mixtral8x7BInstruct, opts...), "bedrock-mistral-8x7b", "bm8x7bi")
}

var _ provider.Model = (*Model)(nil)

// Model implements provider.Model for one Mistral variant.
// It holds no mutable state; each invocation builds its own client.
type Model struct {
	id  string
	cfg modelConfig
}

// ModelOption configures a Model.
type ModelOption func(*modelConfig)

type modelConfig struct {
	region  string
	profile string
	logger  *zap.Logger
	runtime Runtime
}

// WithRegion sets the AWS region. The default comes from the AWS
// environment and shared config.
func WithRegion(region string) ModelOption {
	return func(c *modelConfig) {
		c.region = region
	}
}

// WithProfile selects a shared config profile.
func WithProfile(profile string) ModelOption {
	return func(c *modelConfig) {
		c.profile = profile
	}
}

// WithLogger sets the logger for request and response debugging.
func WithLogger(logger *zap.Logger) ModelOption {
	return func(c *modelConfig) {
		c.logger = logger
	}
}

// WithRuntime replaces the Bedrock runtime client.
func WithRuntime(rt Runtime) ModelOption {
	return func(c *modelConfig) {
		c.runtime = rt
	}
}

// New creates a Model for the given Bedrock model identifier.
func New(modelID string, opts ...ModelOption) *Model {
	cfg := modelConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	return &Model{id: modelID, cfg: cfg}
}

// ModelID returns the Bedrock model identifier.
func (m *Model) ModelID() string {
	return m.id
}

func (m *Model) String() string {
	return "BedrockMistral: " + m.id
}

// CanStream implements provider.Model.
func (m *Model) CanStream() bool {
	return true
}

// OptionsSchema implements provider.Model.
func (m *Model) OptionsSchema() *jsonschema.Schema {
	return schema.For[Options]()
}

// NewOptions implements provider.Model. The result is an Options value.
func (m *Model) NewOptions(raw provider.Options) (any, error) {
	return ParseOptions(raw)
}

// Execute implements provider.Model.
// The returned sequence performs the remote call when first iterated.
// It sets resp.UserText to the user content sent, resp.PromptJSON to the
// request body and resp.ResponseJSON to the decoded reply; appending
// fragments to resp is left to the caller.
func (m *Model) Execute(ctx context.Context, prompt *provider.Prompt, stream bool, resp *provider.Response, conv *provider.Conversation) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if prompt == nil {
			yield("", errNilPrompt)
			return
		}
		if resp == nil {
			resp = provider.NewResponse(m.id, prompt)
		}

		opts, err := optionsFor(prompt)
		if err != nil {
			yield("", err)
			return
		}

		body := buildBody(m.id, prompt, opts, conv)
		resp.UserText = userText(m.id, prompt)
		resp.PromptJSON = string(body)

		rt, err := m.runtime(ctx)
		if err != nil {
			yield("", err)
			return
		}

		m.cfg.logger.Debug("invoking model",
			zap.String("model_id", m.id),
			zap.Bool("stream", stream),
			zap.ByteString("body", body),
		)

		if stream {
			m.stream(ctx, rt, body, resp, yield)
			return
		}
		m.invoke(ctx, rt, body, resp, yield)
	}
}

func (m *Model) runtime(ctx context.Context) (Runtime, error) {
	if m.cfg.runtime != nil {
		return m.cfg.runtime, nil
	}
	rt, err := newBedrockRuntime(ctx, &m.cfg)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (m *Model) invoke(ctx context.Context, rt Runtime, body []byte, resp *provider.Response, yield func(string, error) bool) {
	raw, err := rt.InvokeModel(ctx, m.id, body)
	if err != nil {
		yield("", err)
		return
	}

	decoded, err := decodeJSON(raw)
	if err != nil {
		yield("", &MalformedResponseError{Reason: "decoding response body", Payload: string(raw), Cause: err})
		return
	}
	resp.ResponseJSON = decoded
	m.cfg.logger.Debug("model response", zap.String("model_id", m.id), zap.Any("response", decoded))

	text, err := lastOutputText(decoded)
	if err != nil {
		yield("", err)
		return
	}
	yield(text, nil)
}

func (m *Model) stream(ctx context.Context, rt Runtime, body []byte, resp *provider.Response, yield func(string, error) bool) {
	events, err := rt.InvokeModelStream(ctx, m.id, body)
	if err != nil {
		yield("", err)
		return
	}
	defer func() { _ = events.Close() }()

	var decodedChunks []any
	for event := range events.Events() {
		chunk, ok := event.(*types.ResponseStreamMemberChunk)
		if !ok {
			continue
		}

		decoded, err := decodeJSON(chunk.Value.Bytes)
		if err != nil {
			yield("", &MalformedResponseError{Reason: "decoding chunk", Payload: string(chunk.Value.Bytes), Cause: err})
			return
		}
		decodedChunks = append(decodedChunks, decoded)
		resp.ResponseJSON = decodedChunks

		text, isDelta, err := deltaText(decoded)
		if err != nil {
			yield("", err)
			return
		}
		if !isDelta {
			continue
		}
		if !yield(text, nil) {
			return
		}
	}

	if err := events.Err(); err != nil {
		yield("", err)
	}
}

// optionsFor accepts validated Options, raw values, or nothing (defaults).
func optionsFor(prompt *provider.Prompt) (Options, error) {
	var opts Options
	switch o := prompt.Options.(type) {
	case nil:
		return DefaultOptions(), nil
	case Options:
		opts = o
	case *Options:
		opts = *o
	case provider.Options:
		return ParseOptions(o)
	case map[string]any:
		return ParseOptions(o)
	default:
		return Options{}, fmt.Errorf("unsupported options type %T", prompt.Options)
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func decodeJSON(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// lastOutputText returns outputs[-1].text.
func lastOutputText(doc map[string]any) (string, error) {
	outputs, ok := doc["outputs"].([]any)
	if !ok {
		return "", &MalformedResponseError{Reason: `missing "outputs"`}
	}
	if len(outputs) == 0 {
		return "", &MalformedResponseError{Reason: `empty "outputs"`}
	}

	last, ok := outputs[len(outputs)-1].(map[string]any)
	if !ok {
		return "", &MalformedResponseError{Reason: "output entry is not an object"}
	}
	text, ok := last["text"].(string)
	if !ok {
		return "", &MalformedResponseError{Reason: `output entry missing "text"`}
	}
	return text, nil
}

// deltaText extracts delta.text from content delta chunks.
// isDelta is false for chunks of any other type.
func deltaText(chunk map[string]any) (text string, isDelta bool, err error) {
	typ, ok := chunk["type"].(string)
	if !ok {
		return "", false, &MalformedResponseError{Reason: `chunk missing "type"`}
	}
	if typ != chunkTypeDelta {
		return "", false, nil
	}

	delta, ok := chunk["delta"].(map[string]any)
	if !ok {
		return "", false, &MalformedResponseError{Reason: `chunk missing "delta"`}
	}
	text, ok = delta["text"].(string)
	if !ok {
		return "", false, &MalformedResponseError{Reason: `delta missing "text"`}
	}
	return text, true, nil
}
