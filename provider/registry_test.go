package provider

import (
	"context"
	"iter"
	"sync"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockModel implements Model interface for testing
type mockModel struct {
	id string
}

func (m *mockModel) ModelID() string { return m.id }

func (m *mockModel) CanStream() bool { return false }

func (m *mockModel) OptionsSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object"}
}

func (m *mockModel) NewOptions(raw Options) (any, error) { return raw, nil }

func (m *mockModel) Execute(ctx context.Context, prompt *Prompt, stream bool, resp *Response, conv *Conversation) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yield("mock response", nil)
	}
}

// Helper to clear registry between tests
func clearRegistry() {
	mu.Lock()
	defer mu.Unlock()
	models = make(map[string]Model)
	aliases = make(map[string]string)
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name    string
		modelID string
		aliases []string
	}{
		{
			name:    "register without aliases",
			modelID: "test-model",
		},
		{
			name:    "register with aliases",
			modelID: "mistral.mistral-7b-instruct-v0:2",
			aliases: []string{"bedrock-mistral-7b", "bmi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearRegistry()

			Register(&mockModel{id: tt.modelID}, tt.aliases...)
			assert.True(t, IsRegistered(tt.modelID))
			for _, a := range tt.aliases {
				assert.True(t, IsRegistered(a))
			}
		})
	}
}

func TestRegister_Overwrite(t *testing.T) {
	clearRegistry()

	first := &mockModel{id: "test"}
	second := &mockModel{id: "test"}
	Register(first, "alias")
	Register(second)

	m, err := Get("alias")
	require.NoError(t, err)
	assert.Same(t, second, m)
}

func TestRegister_AliasMovesToNewModel(t *testing.T) {
	clearRegistry()

	Register(&mockModel{id: "a"}, "shared")
	Register(&mockModel{id: "b"}, "shared")

	m, err := Get("shared")
	require.NoError(t, err)
	assert.Equal(t, "b", m.ModelID())
	assert.Empty(t, Aliases("a"))
}

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		model   string
		wantErr bool
		wantID  string
	}{
		{
			name: "get by id",
			setup: func() {
				Register(&mockModel{id: "existing"})
			},
			model:  "existing",
			wantID: "existing",
		},
		{
			name: "get by alias",
			setup: func() {
				Register(&mockModel{id: "mistral.mixtral-8x7b-instruct-v0:1"}, "bm8x7bi")
			},
			model:  "bm8x7bi",
			wantID: "mistral.mixtral-8x7b-instruct-v0:1",
		},
		{
			name:    "get unknown model",
			setup:   func() {},
			model:   "unknown",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearRegistry()
			tt.setup()

			m, err := Get(tt.model)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, m.ModelID())
		})
	}
}

func TestGet_ErrorIncludesAvailable(t *testing.T) {
	clearRegistry()

	Register(&mockModel{id: "model-a"})
	Register(&mockModel{id: "model-b"})

	_, err := Get("unknown")
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "unknown")
	assert.Contains(t, errStr, "model-a")
	assert.Contains(t, errStr, "model-b")
}

func TestAvailable(t *testing.T) {
	clearRegistry()
	assert.Empty(t, Available())

	Register(&mockModel{id: "two"}, "2")
	Register(&mockModel{id: "one"}, "1")
	Register(&mockModel{id: "three"})

	assert.Equal(t, []string{"one", "three", "two"}, Available())
}

func TestAliases(t *testing.T) {
	clearRegistry()

	Register(&mockModel{id: "m"}, "zeta", "alpha")
	Register(&mockModel{id: "other"}, "beta")

	assert.Equal(t, []string{"alpha", "zeta"}, Aliases("m"))
	assert.Equal(t, []string{"beta"}, Aliases("other"))
	assert.Empty(t, Aliases("missing"))
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	clearRegistry()

	Register(&mockModel{id: "concurrent"}, "c")

	var wg sync.WaitGroup
	iterations := 100

	for i := 0; i < iterations; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = Get("c")
			_ = Available()
			_ = Aliases("concurrent")
			_ = IsRegistered("concurrent")
		}()
	}

	for i := 0; i < iterations; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Register(&mockModel{id: "concurrent"}, "c")
		}()
	}

	wg.Wait()

	assert.True(t, IsRegistered("c"))
}
