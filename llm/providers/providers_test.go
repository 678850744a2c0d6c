package providers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/commitai/config"
	"github.com/c360studio/commitai/llm"
)

func TestRegistration(t *testing.T) {
	for _, name := range []string{"ollama", "openai", "anthropic", "gemini"} {
		assert.NotNil(t, llm.GetProvider(name), "provider %s not registered", name)
	}
}

func TestOllamaProvider_BuildURL(t *testing.T) {
	p := &OllamaProvider{}

	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{"empty uses local default", "", "http://localhost:11434/v1/chat/completions"},
		{"bare host gets v1 suffix", "http://myhost:8080", "http://myhost:8080/v1/chat/completions"},
		{"v1 base", "http://localhost:11434/v1", "http://localhost:11434/v1/chat/completions"},
		{"full path untouched", "http://localhost:11434/v1/chat/completions", "http://localhost:11434/v1/chat/completions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.BuildURL(tt.baseURL, "llama3.2"))
		})
	}
}

func TestOllamaProvider_RequestResponse(t *testing.T) {
	p := &OllamaProvider{}

	temp := 0.2
	body, err := p.BuildRequestBody("llama3.2", []llm.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
	}, &temp, 256)
	require.NoError(t, err)

	assert.Contains(t, string(body), `"model":"llama3.2"`)
	assert.Contains(t, string(body), `"temperature":0.2`)
	assert.Contains(t, string(body), `"max_tokens":256`)
	assert.Contains(t, string(body), `"role":"system"`)

	content, err := p.ParseResponse([]byte(`{
		"model": "llama3.2",
		"choices": [{"message": {"role": "assistant", "content": "feat: add x"}, "finish_reason": "stop"}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "feat: add x", content)

	_, err = p.ParseResponse([]byte(`{"choices": []}`))
	require.Error(t, err)
}

func TestOpenAIProvider(t *testing.T) {
	p := &OpenAIProvider{}

	assert.Equal(t, "https://api.openai.com/v1/chat/completions", p.BuildURL("", "gpt-4o-mini"))
	assert.Equal(t, "https://proxy.example.com/v1/chat/completions", p.BuildURL("https://proxy.example.com/v1/", "gpt-4o-mini"))

	req, _ := http.NewRequest(http.MethodPost, "http://x", nil)
	p.SetHeaders(req, config.ProviderConfig{APIKey: "sk-test"})
	assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
}

func TestAnthropicProvider_BuildRequestBody(t *testing.T) {
	p := &AnthropicProvider{}

	body, err := p.BuildRequestBody("claude-3-5-sonnet-20241022", []llm.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
	}, nil, 0)
	require.NoError(t, err)

	// System message lifted to top-level field, not in messages.
	assert.Contains(t, string(body), `"system":"be brief"`)
	assert.NotContains(t, string(body), `"role":"system"`)
	assert.Contains(t, string(body), `"max_tokens":4096`)
	assert.NotContains(t, string(body), `"temperature"`)
}

func TestAnthropicProvider_Headers(t *testing.T) {
	p := &AnthropicProvider{}

	req, _ := http.NewRequest(http.MethodPost, "http://x", nil)
	p.SetHeaders(req, config.ProviderConfig{APIKey: "ak-test"})
	assert.Equal(t, "ak-test", req.Header.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, req.Header.Get("anthropic-version"))
}

func TestAnthropicProvider_ParseResponse(t *testing.T) {
	p := &AnthropicProvider{}

	content, err := p.ParseResponse([]byte(`{
		"content": [
			{"type": "text", "text": "fix(auth): "},
			{"type": "text", "text": "handle expired tokens"}
		],
		"model": "claude-3-5-sonnet-20241022",
		"stop_reason": "end_turn"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "fix(auth): handle expired tokens", content)

	_, err = p.ParseResponse([]byte(`{"content": []}`))
	require.Error(t, err)
}

func TestGeminiProvider(t *testing.T) {
	p := &GeminiProvider{}

	url := p.BuildURL("", "gemini-pro")
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1/models/gemini-pro:generateContent", url)

	req, _ := http.NewRequest(http.MethodPost, url, nil)
	p.SetHeaders(req, config.ProviderConfig{APIKey: "g-test"})
	assert.Equal(t, "g-test", req.Header.Get("x-goog-api-key"))

	temp := 0.3
	body, err := p.BuildRequestBody("gemini-pro", []llm.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
	}, &temp, 1000)
	require.NoError(t, err)
	// System and user text folded into one part.
	assert.Contains(t, string(body), "be brief\\n\\nhi")
	assert.Contains(t, string(body), `"maxOutputTokens":1000`)

	content, err := p.ParseResponse([]byte(`{
		"candidates": [{"content": {"parts": [{"text": "docs: update README"}]}, "finishReason": "STOP"}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "docs: update README", content)

	_, err = p.ParseResponse([]byte(`{"candidates": []}`))
	require.Error(t, err)
}
