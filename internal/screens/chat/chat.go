package chat

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/seatutor/internal/curriculum"
	"github.com/abhisek/seatutor/internal/llm"
	"github.com/abhisek/seatutor/internal/screen"
	"github.com/abhisek/seatutor/internal/session"
	"github.com/abhisek/seatutor/internal/ui/components"
	"github.com/abhisek/seatutor/internal/ui/layout"
)

// messageLimit bounds one student message.
const messageLimit = 500

// ChatScreen is the conversation with the tutor on one topic.
type ChatScreen struct {
	ctx      context.Context
	practice screen.Practice
	topic    curriculum.Topic
	input    components.TextInput
	lines    []line
	progress session.Progress
	waiting  bool
	blocked  bool
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)

// New creates a ChatScreen. The topic must already be selected on practice.
// Turns run under ctx, so cancelling it abandons a reply in flight.
func New(ctx context.Context, practice screen.Practice, topic curriculum.Topic) *ChatScreen {
	c := &ChatScreen{
		ctx:      ctx,
		practice: practice,
		topic:    topic,
		input:    components.NewTextInput("Ask for a question or type your answer...", messageLimit),
		progress: practice.Progress(),
	}
	st, _ := practice.Student()
	c.lines = append(c.lines, line{
		Kind: lineTutor,
		Text: fmt.Sprintf("Hi %s! Let's practise %s %s. Ask me for a question whenever you're ready.", st.FirstName, topic.Icon, topic.Name),
	})
	return c
}

func (c *ChatScreen) Init() tea.Cmd {
	return c.input.Init()
}

func (c *ChatScreen) Title() string {
	return fmt.Sprintf("%s %s", c.topic.Icon, c.topic.Name)
}

func (c *ChatScreen) KeyHints() []layout.KeyHint {
	if c.blocked {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back to topics"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Esc", Description: "Change topic"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (c *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case turnDoneMsg:
		return c.handleTurn(msg)

	case tea.KeyPressMsg:
		if c.waiting || c.blocked {
			return c, nil
		}
		if msg.String() == "enter" {
			return c, c.send()
		}
	}

	if c.waiting || c.blocked {
		return c, nil
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *ChatScreen) send() tea.Cmd {
	text := c.input.Value()
	if text == "" {
		return nil
	}
	c.input.Reset()
	c.lines = append(c.lines, line{Kind: lineStudent, Text: text})
	c.waiting = true

	ctx, practice := c.ctx, c.practice
	return func() tea.Msg {
		res, err := practice.Turn(ctx, text)
		return turnDoneMsg{Result: res, Err: err}
	}
}

func (c *ChatScreen) handleTurn(msg turnDoneMsg) (screen.Screen, tea.Cmd) {
	c.waiting = false
	if msg.Result != nil {
		c.progress = msg.Result.Progress
	} else {
		c.progress = c.practice.Progress()
	}

	if msg.Err != nil {
		if session.IsLimit(msg.Err) {
			c.blocked = true
		}
		c.lines = append(c.lines, line{Kind: lineWarning, Text: errorText(msg.Err, c.progress)})
		return c, nil
	}

	res := msg.Result
	c.lines = append(c.lines, line{Kind: lineTutor, Text: res.Reply})
	for _, n := range res.Notices {
		c.lines = append(c.lines, line{Kind: lineNotice, Text: n.Message})
	}
	return c, nil
}

// errorText turns a turn error into something a student can act on.
func errorText(err error, p session.Progress) string {
	var rateLimit *llm.ErrRateLimit
	var unavailable *llm.ErrProviderUnavailable
	switch {
	case errors.Is(err, session.ErrDailyLimit):
		return fmt.Sprintf("You've reached your daily limit of %d questions. Great work today! Come back tomorrow. 🌟", p.DailyLimit)
	case errors.Is(err, session.ErrGlobalLimit):
		return "The class has used all of today's practice. Please try again tomorrow."
	case errors.As(err, &rateLimit), errors.As(err, &unavailable):
		return "The tutor is busy right now. Wait a moment and send your message again."
	default:
		return "Something went wrong: " + err.Error()
	}
}
