package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/abhisek/seatutor/internal/store"
)

type recordingLLMRepo struct {
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingLLMRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func (r *recordingLLMRepo) LLMUsageByPurpose(context.Context) ([]store.LLMUsage, error) {
	return nil, nil
}

func (r *recordingLLMRepo) LLMUsageByModel(context.Context) ([]store.LLMUsage, error) {
	return nil, nil
}

func (r *recordingLLMRepo) QueryLLMRequests(context.Context, string, int) ([]store.LLMRequestRecord, error) {
	return nil, nil
}

func (r *recordingLLMRepo) GetLLMRequest(context.Context, int) (*store.LLMRequestRecord, error) {
	return nil, nil
}

func TestLogging_RecordsEvent(t *testing.T) {
	repo := &recordingLLMRepo{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage("hi"),
		Usage:   Usage{InputTokens: 7, OutputTokens: 3},
	})
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := WithLogging(mock, "gemini", repo, logger)

	ctx := WithSession(WithPurpose(context.Background(), "tutor-reply"), "sess-7")
	req := Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "q"}}, Temperature: 0.7, TopP: 0.8}
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(repo.events))
	}
	ev := repo.events[0]
	if ev.Provider != "gemini" || ev.Purpose != "tutor-reply" || !ev.Success {
		t.Errorf("event = %+v", ev)
	}
	if ev.InputTokens != 7 || ev.OutputTokens != 3 {
		t.Errorf("tokens = %d/%d, want 7/3", ev.InputTokens, ev.OutputTokens)
	}
	if !strings.Contains(ev.RequestBody, "[system]\nsys") || !strings.Contains(ev.RequestBody, "[user]\nq") {
		t.Errorf("RequestBody = %q", ev.RequestBody)
	}
	if !strings.Contains(ev.RequestBody, "[sampling] temperature=0.7 top_p=0.8") {
		t.Errorf("RequestBody = %q, want sampling line", ev.RequestBody)
	}
	if ev.ResponseBody != "hi" {
		t.Errorf("ResponseBody = %q", ev.ResponseBody)
	}
	if out := buf.String(); !strings.Contains(out, "session_id=sess-7") || !strings.Contains(out, "purpose=tutor-reply") {
		t.Errorf("log output = %q", out)
	}
}

func TestLogging_FailureAndRepoError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	repo := &recordingLLMRepo{err: errors.New("db down")}
	boom := &ErrRateLimit{Err: errors.New("429")}
	p := WithLogging(NewMockProvider(MockResponse{Err: boom}), "openai", repo, logger)

	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, boom) {
		t.Fatalf("Generate() error = %v, want the provider error", err)
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Errorf("event = %+v", repo.events)
	}
	out := buf.String()
	if !strings.Contains(out, "llm request failed") || !strings.Contains(out, "failed to record LLM request event") {
		t.Errorf("log output = %q", out)
	}
}

func TestLogging_NilRepo(t *testing.T) {
	p := WithLogging(NewMockProvider(MockResponse{Content: json.RawMessage("x")}), "mock", nil, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID() = %q", p.ModelID())
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID() = %q, want mock", p.ModelID())
	}

	if _, err := NewProvider(context.Background(), Config{Provider: "nope"}, nil, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestEstimateCost(t *testing.T) {
	cost, ok := EstimateCost("gemini-2.5-flash", 1_000_000, 1_000_000)
	if !ok {
		t.Fatal("gemini-2.5-flash should be priced")
	}
	if cost < 2.79 || cost > 2.81 {
		t.Errorf("cost = %v, want 2.8", cost)
	}
	if _, ok := EstimateCost("unknown-model", 1, 1); ok {
		t.Error("unknown model should not be priced")
	}
}
