package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/seatutor/internal/llm"
)

// Purpose labels tutor requests in the LLM request log.
const Purpose = "tutor-reply"

// ErrEmptyReply is returned when the model answers with nothing.
var ErrEmptyReply = errors.New("tutor returned an empty reply")

// Config holds reply generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
	TopP        float64

	// MaxHistory bounds how many prior messages are resent. Zero sends all.
	MaxHistory int
}

// DefaultConfig returns the settings the tutor ships with.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   500,
		Temperature: 0.7,
		TopP:        0.8,
		MaxHistory:  20,
	}
}

// Input is one student message with its conversational context.
type Input struct {
	// History holds prior turns as sent to the model, oldest first.
	History   []llm.Message
	FirstName string
	Topic     string
	Text      string
}

// Reply is the tutor's answer and the user message that produced it, ready
// to be appended to the history.
type Reply struct {
	Text   string
	Prompt llm.Message
	Usage  llm.Usage
}

// Generator produces tutor replies through an LLM provider.
type Generator struct {
	provider llm.Provider
	cfg      Config
}

// NewGenerator creates a reply generator.
func NewGenerator(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, cfg: cfg}
}

// Generate sends the student's text with prior turns and returns the reply.
func (g *Generator) Generate(ctx context.Context, in Input) (*Reply, error) {
	ctx = llm.WithPurpose(ctx, Purpose)

	prompt := llm.Message{
		Role:    llm.RoleUser,
		Content: FormatPrompt(in.FirstName, in.Topic, in.Text),
	}

	history := trimHistory(in.History, g.cfg.MaxHistory)
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, prompt)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      SystemPrompt,
		Messages:    messages,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		TopP:        g.cfg.TopP,
	})
	if err != nil {
		return nil, fmt.Errorf("tutor reply: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, ErrEmptyReply
	}

	return &Reply{Text: text, Prompt: prompt, Usage: resp.Usage}, nil
}

// trimHistory keeps the newest max messages, starting on a user turn so
// providers that require alternating roles accept the slice.
func trimHistory(history []llm.Message, max int) []llm.Message {
	if max <= 0 || len(history) <= max {
		return history
	}
	h := history[len(history)-max:]
	for len(h) > 0 && h[0].Role != llm.RoleUser {
		h = h[1:]
	}
	return h
}
