package llm

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiReply(text, finishReason string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
			"finishReason": finishReason,
		}},
		"usageMetadata": map[string]any{"promptTokenCount": 80, "candidatesTokenCount": 12, "totalTokenCount": 92},
		"modelVersion":  "gemini-2.5-flash-001",
	}
}

func newTestGeminiProvider(t *testing.T, baseURL string) *GeminiProvider {
	t.Helper()
	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "g-test", Model: "gemini-flash", BaseURL: baseURL})
	require.NoError(t, err)
	return p
}

func TestGeminiProvider_SendsSampling(t *testing.T) {
	up, srv := newUpstream(t, http.StatusOK, nil, geminiReply("Almost! 🙂 Check the denominator. What is 3/5 + 1/5?", "STOP"))
	p := newTestGeminiProvider(t, srv.URL)
	assert.Equal(t, "gemini-2.5-flash", p.ModelID())

	resp, err := p.Generate(context.Background(), tutorRequest())
	require.NoError(t, err)
	assert.Equal(t, "Almost! 🙂 Check the denominator. What is 3/5 + 1/5?", resp.Text())
	assert.Equal(t, Usage{InputTokens: 80, OutputTokens: 12, TotalTokens: 92}, resp.Usage)
	assert.Equal(t, "gemini-2.5-flash-001", resp.Model)
	assert.Equal(t, "end", resp.StopReason)

	path, body := up.last(t)
	assert.True(t, strings.HasSuffix(path, "/models/gemini-2.5-flash:generateContent"), path)

	gen, ok := body["generationConfig"].(map[string]any)
	require.True(t, ok, "generationConfig sent")
	assert.InDelta(t, 0.8, gen["topP"], 1e-6)
	assert.InDelta(t, 0.7, gen["temperature"], 1e-6)
	assert.EqualValues(t, 500, gen["maxOutputTokens"])
	assert.Contains(t, body, "systemInstruction")

	contents, ok := body["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 3)
	assert.Equal(t, "model", contents[1].(map[string]any)["role"])
}

func TestGeminiProvider_TruncatedStructuredReply(t *testing.T) {
	_, srv := newUpstream(t, http.StatusOK, nil, geminiReply(`{"corr`, "MAX_TOKENS"))
	req := tutorRequest()
	req.Schema = verdictSchema

	_, err := newTestGeminiProvider(t, srv.URL).Generate(context.Background(), req)
	var truncated *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &truncated)
}

func TestGeminiProvider_Errors(t *testing.T) {
	t.Run("quota exhausted", func(t *testing.T) {
		_, srv := newUpstream(t, http.StatusTooManyRequests, nil,
			map[string]any{"error": map[string]any{"code": 429, "message": "Resource has been exhausted", "status": "RESOURCE_EXHAUSTED"}})
		_, err := newTestGeminiProvider(t, srv.URL).Generate(context.Background(), tutorRequest())
		var rl *ErrRateLimit
		assert.ErrorAs(t, err, &rl)
	})

	t.Run("bad key", func(t *testing.T) {
		_, srv := newUpstream(t, http.StatusBadRequest, nil,
			map[string]any{"error": map[string]any{"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}})
		_, err := newTestGeminiProvider(t, srv.URL).Generate(context.Background(), tutorRequest())
		var unavailable *ErrProviderUnavailable
		require.ErrorAs(t, err, &unavailable)
		assert.True(t, unavailable.Rejected())
	})
}

func TestGeminiProvider_StructuredReply(t *testing.T) {
	up, srv := newUpstream(t, http.StatusOK, nil, geminiReply(`{"correct":false}`, "STOP"))
	req := tutorRequest()
	req.Schema = verdictSchema

	resp, err := newTestGeminiProvider(t, srv.URL).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"correct":false}`, resp.Text())

	_, body := up.last(t)
	gen := body["generationConfig"].(map[string]any)
	assert.Equal(t, "application/json", gen["responseMimeType"])
	schema, ok := gen["responseJsonSchema"].(map[string]any)
	require.True(t, ok, "JSON schema sent")
	assert.Equal(t, []any{"correct"}, schema["required"])
}
