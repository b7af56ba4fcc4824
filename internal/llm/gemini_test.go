package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"claims\":"},{"text":"[]}"}]}}]}`))
	}))
	defer server.Close()

	provider, err := NewGeminiProvider(context.Background(), Config{APIKey: "test-key", BaseURL: server.URL + "/"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", provider.Model())

	text, err := provider.Complete(context.Background(), CompletionRequest{System: "sys", Prompt: "extract"})
	require.NoError(t, err)
	assert.Equal(t, "{\"claims\":\n[]}", text)
}

func TestGeminiProvider_Validation(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), Config{APIKey: "  "})
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	p, err := NewProvider(ctx, Config{Provider: "deepseek", APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	p, err = NewProvider(ctx, Config{Provider: "claude", APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())

	_, err = NewProvider(ctx, Config{Provider: "ollama"}, nil)
	assert.Error(t, err)
}
