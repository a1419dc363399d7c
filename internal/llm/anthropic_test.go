package llm

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicMessage(text, stopReason string) map[string]any {
	return map[string]any{
		"id":          "msg_01",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stopReason,
		"usage":       map[string]any{"input_tokens": 120, "output_tokens": 18},
	}
}

func anthropicError(kind, message string) map[string]any {
	return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": message}}
}

func newTestAnthropicProvider(t *testing.T, baseURL string) *AnthropicProvider {
	t.Helper()
	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "sk-ant-test", Model: "claude-haiku", BaseURL: baseURL})
	require.NoError(t, err)
	return p
}

func TestAnthropicProvider_SendsSampling(t *testing.T) {
	up, srv := newUpstream(t, http.StatusOK, nil, anthropicMessage("🎉 Yes! 1/2 + 1/4 = 3/4. Next: what is 2/3 of 12?", "end_turn"))
	p := newTestAnthropicProvider(t, srv.URL)

	resp, err := p.Generate(context.Background(), tutorRequest())
	require.NoError(t, err)
	assert.Equal(t, "🎉 Yes! 1/2 + 1/4 = 3/4. Next: what is 2/3 of 12?", resp.Text())
	assert.Equal(t, Usage{InputTokens: 120, OutputTokens: 18, TotalTokens: 138}, resp.Usage)
	assert.Equal(t, "end", resp.StopReason)
	assert.Equal(t, "claude-haiku-4-5-20251001", resp.Model)

	path, body := up.last(t)
	assert.Equal(t, "/v1/messages", path)
	assert.Equal(t, "claude-haiku-4-5-20251001", body["model"])
	assert.InDelta(t, 0.8, body["top_p"], 1e-9)
	assert.InDelta(t, 0.7, body["temperature"], 1e-9)
	assert.EqualValues(t, 500, body["max_tokens"])
	assert.Len(t, body["messages"], 3)
}

func TestAnthropicProvider_OmitsUnsetSampling(t *testing.T) {
	up, srv := newUpstream(t, http.StatusOK, nil, anthropicMessage("ok", "end_turn"))
	p := newTestAnthropicProvider(t, srv.URL)

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "Summarise the class."}},
		MaxTokens: 800,
	})
	require.NoError(t, err)

	_, body := up.last(t)
	assert.NotContains(t, body, "top_p")
	assert.NotContains(t, body, "temperature")
}

func TestAnthropicProvider_TruncatedStructuredReply(t *testing.T) {
	_, srv := newUpstream(t, http.StatusOK, nil, anthropicMessage(`{"corr`, "max_tokens"))
	p := newTestAnthropicProvider(t, srv.URL)

	req := tutorRequest()
	req.Schema = verdictSchema
	_, err := p.Generate(context.Background(), req)

	var truncated *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &truncated)
	assert.Equal(t, `{"corr`, string(truncated.Content))
}

func TestAnthropicProvider_Errors(t *testing.T) {
	t.Run("rate limit keeps retry-after", func(t *testing.T) {
		_, srv := newUpstream(t, http.StatusTooManyRequests, http.Header{"Retry-After": {"3"}},
			anthropicError("rate_limit_error", "Rate limit exceeded"))
		_, err := newTestAnthropicProvider(t, srv.URL).Generate(context.Background(), tutorRequest())

		var rl *ErrRateLimit
		require.ErrorAs(t, err, &rl)
		assert.Equal(t, "3s", rl.RetryAfter.String())
	})

	t.Run("overloaded is unavailable", func(t *testing.T) {
		_, srv := newUpstream(t, 529, nil, anthropicError("overloaded_error", "Overloaded"))
		_, err := newTestAnthropicProvider(t, srv.URL).Generate(context.Background(), tutorRequest())

		var unavailable *ErrProviderUnavailable
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, 529, unavailable.Status)
		assert.False(t, unavailable.Rejected())
	})

	t.Run("bad key is rejected", func(t *testing.T) {
		_, srv := newUpstream(t, http.StatusUnauthorized, nil, anthropicError("authentication_error", "invalid x-api-key"))
		_, err := newTestAnthropicProvider(t, srv.URL).Generate(context.Background(), tutorRequest())

		var unavailable *ErrProviderUnavailable
		require.ErrorAs(t, err, &unavailable)
		assert.True(t, unavailable.Rejected())
	})
}

func TestNewAnthropicProvider(t *testing.T) {
	_, err := NewAnthropicProvider(AnthropicConfig{Model: "claude-haiku"})
	assert.Error(t, err)

	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "sk-ant", Model: "claude-sonnet"})
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", p.ModelID())
}
