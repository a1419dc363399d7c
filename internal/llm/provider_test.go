package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upstream is a fake provider endpoint that keeps the decoded body of the
// last request it served.
type upstream struct {
	mu   sync.Mutex
	path string
	body map[string]any
}

func (u *upstream) last(t *testing.T) (string, map[string]any) {
	t.Helper()
	u.mu.Lock()
	defer u.mu.Unlock()
	require.NotNil(t, u.body, "no request reached the server")
	return u.path, u.body
}

// newUpstream serves status and reply (JSON-encoded) for every request.
func newUpstream(t *testing.T, status int, header http.Header, reply any) (*upstream, *httptest.Server) {
	t.Helper()
	u := &upstream{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		u.mu.Lock()
		u.path, u.body = r.URL.Path, body
		u.mu.Unlock()

		for k, vs := range header {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return u, srv
}

// tutorRequest is the shape of a tutor turn with the session's sampling.
func tutorRequest() Request {
	return Request{
		System: "You are a friendly maths tutor for SEA students.",
		Messages: []Message{
			{Role: RoleUser, Content: "I'm ready for fractions!"},
			{Role: RoleAssistant, Content: "What is 1/2 + 1/4?"},
			{Role: RoleUser, Content: "3/4"},
		},
		MaxTokens:   500,
		Temperature: 0.7,
		TopP:        0.8,
	}
}

var verdictSchema = &Schema{
	Name: "verdict",
	Definition: map[string]any{
		"type":       "object",
		"properties": map[string]any{"correct": map[string]any{"type": "boolean"}},
		"required":   []any{"correct"},
	},
}

func TestMockProvider_AnswersInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage("✅ Correct!"), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage("What is 45 ÷ 9?")},
	)

	first, err := mock.Generate(context.Background(), tutorRequest())
	require.NoError(t, err)
	assert.Equal(t, "✅ Correct!", first.Text())
	assert.Equal(t, 10, first.Usage.InputTokens)
	assert.Equal(t, "end", first.StopReason)

	second, err := mock.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "What is 45 ÷ 9?", second.Text())
	assert.Equal(t, 2, mock.CallCount())
}

func TestMockProvider_ExhaustedScript(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavailable *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.False(t, unavailable.Rejected())
}

func TestMockProvider_ScriptedError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("slow down")}})
	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)
}

func TestMockProvider_CancelledContext(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage("hi")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mock.Generate(ctx, tutorRequest())
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, mock.CallCount(), "a cancelled request is not recorded")

	resp, err := mock.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Text(), "the scripted answer is still queued")
}

func TestMockProvider_LastRequest(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage("ok")})
	_, ok := mock.LastRequest()
	assert.False(t, ok)

	_, err := mock.Generate(context.Background(), tutorRequest())
	require.NoError(t, err)
	req, ok := mock.LastRequest()
	require.True(t, ok)
	assert.Equal(t, 0.8, req.TopP)
	assert.Equal(t, "3/4", req.Messages[2].Content)
	assert.Equal(t, "mock", mock.ModelID())
}

func TestContextTags(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", PurposeFrom(ctx))
	assert.Empty(t, SessionFrom(ctx))

	ctx = WithSession(WithPurpose(ctx, "tutor-reply"), "sess-42")
	assert.Equal(t, "tutor-reply", PurposeFrom(ctx))
	assert.Equal(t, "sess-42", SessionFrom(ctx))
	assert.Equal(t, "unknown", PurposeFrom(WithPurpose(ctx, "")))
}

func TestRequestSampling(t *testing.T) {
	temp, topP := Request{}.sampling()
	assert.Nil(t, temp)
	assert.Nil(t, topP)

	temp, topP = tutorRequest().sampling()
	require.NotNil(t, temp)
	require.NotNil(t, topP)
	assert.Equal(t, 0.7, *temp)
	assert.Equal(t, 0.8, *topP)
}

func TestFinish(t *testing.T) {
	plain := tutorRequest()
	assert.NoError(t, finish(plain, json.RawMessage("not json"), "max_tokens"), "free text is never checked")

	structured := Request{Schema: verdictSchema}
	assert.NoError(t, finish(structured, json.RawMessage(`{"correct":true}`), "end"))

	var truncated *ErrMaxTokensExceeded
	assert.ErrorAs(t, finish(structured, json.RawMessage(`{"corr`), "max_tokens"), &truncated)

	var invalid *ErrInvalidResponse
	assert.ErrorAs(t, finish(structured, json.RawMessage(`{"correct":"yes"}`), "end"), &invalid)
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		models map[string]string
		in     string
		want   string
	}{
		{geminiModels, "gemini-flash", "gemini-2.5-flash"},
		{geminiModels, "gemini-pro", "gemini-2.5-pro"},
		{anthropicModels, "claude-haiku", "claude-haiku-4-5-20251001"},
		{anthropicModels, "claude-sonnet", "claude-sonnet-4-20250514"},
		{openaiModels, "gpt-4o-mini", "gpt-4o-mini"},
		{bedrockModels, "claude-haiku", "anthropic.claude-3-5-haiku-20241022-v1:0"},
		{geminiModels, "gemini-2.0-flash-001", "gemini-2.0-flash-001"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveModel(tt.in, tt.models), tt.in)
	}
}

func TestStatusError(t *testing.T) {
	cause := errors.New("upstream said no")

	var rl *ErrRateLimit
	require.ErrorAs(t, statusError(http.StatusTooManyRequests, http.Header{"Retry-After": {"7"}}, cause), &rl)
	assert.Equal(t, 7*time.Second, rl.RetryAfter)
	assert.ErrorIs(t, rl, cause)

	require.ErrorAs(t, statusError(http.StatusTooManyRequests, nil, cause), &rl)
	assert.Zero(t, rl.RetryAfter)

	var unavailable *ErrProviderUnavailable
	require.ErrorAs(t, statusError(http.StatusBadGateway, nil, cause), &unavailable)
	assert.False(t, unavailable.Rejected())
	assert.Contains(t, unavailable.Error(), "HTTP 502")

	require.ErrorAs(t, statusError(http.StatusUnauthorized, nil, cause), &unavailable)
	assert.True(t, unavailable.Rejected())
}

func TestRetryAfterHTTPDate(t *testing.T) {
	at := time.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat)
	d := retryAfter(http.Header{"Retry-After": {at}})
	assert.Greater(t, d, 60*time.Second)
	assert.LessOrEqual(t, d, 90*time.Second)

	assert.Zero(t, retryAfter(http.Header{"Retry-After": {"soon"}}))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"gemini without key", Config{Provider: "gemini"}, "SEATUTOR_LLM_GEMINI_API_KEY"},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "g-test"}}, ""},
		{"anthropic without key", Config{Provider: "anthropic"}, "SEATUTOR_LLM_ANTHROPIC_API_KEY"},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, ""},
		{"openai without key", Config{Provider: "openai"}, "SEATUTOR_LLM_OPENAI_API_KEY"},
		{"openrouter without key", Config{Provider: "openrouter"}, "SEATUTOR_LLM_OPENROUTER_API_KEY"},
		{"bedrock needs region", Config{Provider: "bedrock"}, "llm.bedrock.region"},
		{"bedrock with region", Config{Provider: "bedrock", Bedrock: BedrockConfig{Region: "us-east-1"}}, ""},
		{"mock needs nothing", Config{Provider: "mock"}, ""},
		{"unknown provider", Config{Provider: "llama"}, "unknown LLM provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.NoError(t, Config{Provider: "mock"}.Validate())
}

func TestResponseText(t *testing.T) {
	resp := &Response{Content: json.RawMessage("✅ Correct!")}
	assert.Equal(t, "✅ Correct!", resp.Text())

	var none *Response
	assert.Empty(t, none.Text())
}
