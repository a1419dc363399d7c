package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/seatutor/internal/curriculum"
	"github.com/abhisek/seatutor/internal/llm"
	"github.com/abhisek/seatutor/internal/session"
	"github.com/abhisek/seatutor/internal/tutor"
)

func newTestChat(t *testing.T, limits session.Limits, replies ...string) *ChatScreen {
	t.Helper()
	return newTestChatContext(t, context.Background(), limits, replies...)
}

func newTestChatContext(t *testing.T, ctx context.Context, limits session.Limits, replies ...string) *ChatScreen {
	t.Helper()
	mock := llm.NewMockProvider()
	for _, r := range replies {
		mock.AddResponse(llm.MockResponse{Content: json.RawMessage(r)})
	}
	s := session.New(session.Deps{
		Replier: tutor.NewGenerator(mock, tutor.DefaultConfig()),
	}, session.Options{
		Limits: limits,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if _, err := s.Login(context.Background(), "Asha Ramdass"); err != nil {
		t.Fatalf("login: %v", err)
	}
	topic, err := s.SelectTopic("number")
	if err != nil {
		t.Fatalf("select topic: %v", err)
	}
	return New(ctx, s, topic)
}

func enter() tea.Msg {
	return tea.KeyPressMsg{Code: tea.KeyEnter}
}

// send types text, submits it and feeds the turn result back.
func send(t *testing.T, c *ChatScreen, text string) turnDoneMsg {
	t.Helper()
	c.input.Model.SetValue(text)
	_, cmd := c.Update(enter())
	if cmd == nil {
		t.Fatal("expected a turn command")
	}
	if !c.waiting {
		t.Error("expected waiting while the tutor replies")
	}
	msg, ok := cmd().(turnDoneMsg)
	if !ok {
		t.Fatalf("expected turnDoneMsg, got %T", cmd())
	}
	c.Update(msg)
	return msg
}

func lastLine(c *ChatScreen) line {
	return c.lines[len(c.lines)-1]
}

func TestChatGreeting(t *testing.T) {
	c := newTestChat(t, session.Limits{})
	if len(c.lines) != 1 {
		t.Fatalf("expected one greeting line, got %d", len(c.lines))
	}
	if !strings.Contains(c.lines[0].Text, "Hi Asha!") {
		t.Errorf("greeting = %q, want first name", c.lines[0].Text)
	}
	if c.Title() != "🔢 Number" {
		t.Errorf("Title = %q, want %q", c.Title(), "🔢 Number")
	}
}

func TestChatTurn(t *testing.T) {
	c := newTestChat(t, session.Limits{}, "Question 1: What is 3/4 of 20?", "✅ Correct! 15 is right.")

	send(t, c, "Give me a question")
	if got := lastLine(c); got.Kind != lineTutor || !strings.Contains(got.Text, "3/4 of 20") {
		t.Errorf("unexpected last line: %+v", got)
	}
	if c.input.Value() != "" {
		t.Error("expected input to be cleared after sending")
	}

	msg := send(t, c, "15")
	if msg.Err != nil {
		t.Fatalf("unexpected error: %v", msg.Err)
	}
	if c.waiting {
		t.Error("expected waiting to clear")
	}
	if c.progress.CorrectAnswers != 1 || c.progress.CurrentStreak != 1 {
		t.Errorf("progress = %+v, want 1 correct and streak 1", c.progress)
	}
	// greeting + 2 × (student, tutor)
	if len(c.lines) != 5 {
		t.Errorf("expected 5 lines, got %d", len(c.lines))
	}
}

func TestChatTurnAbandonedWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := newTestChatContext(t, ctx, session.Limits{}, "Question 1: What is 3/4 of 20?")
	cancel()

	msg := send(t, c, "Give me a question")
	if !errors.Is(msg.Err, context.Canceled) {
		t.Fatalf("Err = %v, want context.Canceled", msg.Err)
	}
	if c.waiting {
		t.Error("expected waiting to clear")
	}
	if got := lastLine(c); got.Kind != lineWarning {
		t.Errorf("last line = %+v, want a warning", got)
	}
	if c.progress.QuestionsAnswered != 0 {
		t.Errorf("QuestionsAnswered = %d, want 0", c.progress.QuestionsAnswered)
	}
}

func TestChatEmptyInputIgnored(t *testing.T) {
	c := newTestChat(t, session.Limits{})
	c.input.Model.SetValue("   ")
	if _, cmd := c.Update(enter()); cmd != nil {
		t.Error("expected no command for blank input")
	}
}

func TestChatBadgeNotice(t *testing.T) {
	replies := make([]string, 5)
	for i := range replies {
		replies[i] = "✅ Correct! Well done."
	}
	c := newTestChat(t, session.Limits{}, replies...)

	for i := 0; i < 5; i++ {
		send(t, c, "answer")
	}

	got := lastLine(c)
	if got.Kind != lineNotice {
		t.Fatalf("expected a notice after five in a row, got %+v", got)
	}
	if !strings.Contains(got.Text, "Asha") {
		t.Errorf("badge notice = %q, want student name", got.Text)
	}
	if !strings.Contains(c.View(100, 40), "Streak: 5") {
		t.Error("expected streak in the status line")
	}
}

func TestChatDailyLimitBlocks(t *testing.T) {
	c := newTestChat(t, session.Limits{PerStudent: 1}, "✅ Correct!")

	send(t, c, "12")
	msg := send(t, c, "another")

	if !session.IsLimit(msg.Err) {
		t.Fatalf("expected limit error, got %v", msg.Err)
	}
	if !c.blocked {
		t.Error("expected chat to be blocked")
	}
	if got := lastLine(c); got.Kind != lineWarning || !strings.Contains(got.Text, "daily limit of 1") {
		t.Errorf("unexpected warning: %+v", got)
	}

	c.input.Model.SetValue("more")
	if _, cmd := c.Update(enter()); cmd != nil {
		t.Error("expected input to be ignored once blocked")
	}
	if !strings.Contains(c.View(100, 30), "Practice is closed for today") {
		t.Error("expected closed message in view")
	}
	if hints := c.KeyHints(); hints[0].Key != "Esc" {
		t.Errorf("expected Esc hint first when blocked, got %q", hints[0].Key)
	}
}

func TestChatTutorUnavailable(t *testing.T) {
	c := newTestChat(t, session.Limits{})

	msg := send(t, c, "hello")
	if msg.Err == nil {
		t.Fatal("expected an error from an empty mock")
	}
	if c.blocked {
		t.Error("provider errors must not block the chat")
	}
	if got := lastLine(c); !strings.Contains(got.Text, "tutor is busy") {
		t.Errorf("unexpected warning: %q", got.Text)
	}
}

func TestRenderTranscriptKeepsNewest(t *testing.T) {
	c := &ChatScreen{topic: curriculum.Topic{Name: "Number"}}
	for i := 0; i < 30; i++ {
		c.lines = append(c.lines, line{Kind: lineNotice, Text: strings.Repeat("x", i+1)})
	}
	out := c.renderTranscript(80, 5)
	if got := strings.Count(out, "\n") + 1; got != 5 {
		t.Errorf("expected 5 rows, got %d", got)
	}
	if !strings.Contains(out, strings.Repeat("x", 30)) {
		t.Error("expected the newest line to be visible")
	}
}
