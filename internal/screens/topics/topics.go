package topics

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/seatutor/internal/curriculum"
	"github.com/abhisek/seatutor/internal/router"
	"github.com/abhisek/seatutor/internal/screen"
	"github.com/abhisek/seatutor/internal/session"
	"github.com/abhisek/seatutor/internal/ui/components"
	"github.com/abhisek/seatutor/internal/ui/layout"
	"github.com/abhisek/seatutor/internal/ui/theme"
)

// Factories build the screens this one navigates to.
type Factories struct {
	Chat    func(curriculum.Topic) screen.Screen
	Summary func(*session.Summary) screen.Screen
}

type logoutDoneMsg struct {
	Summary *session.Summary
	Err     error
}

// TopicsScreen lets the student pick a strand or finish practice.
type TopicsScreen struct {
	ctx      context.Context
	practice screen.Practice
	student  session.Student
	next     Factories
	menu     components.Menu
	errMsg   string
	leaving  bool
}

var _ screen.Screen = (*TopicsScreen)(nil)
var _ screen.KeyHintProvider = (*TopicsScreen)(nil)

// New creates a TopicsScreen for a logged-in student.
func New(ctx context.Context, practice screen.Practice, student session.Student, next Factories) *TopicsScreen {
	t := &TopicsScreen{
		ctx:      ctx,
		practice: practice,
		student:  student,
		next:     next,
	}

	var items []components.MenuItem
	for _, topic := range curriculum.AllTopics() {
		items = append(items, components.MenuItem{
			Label:  fmt.Sprintf("%s %s", topic.Icon, topic.Name),
			Detail: topic.Description,
			Action: func() tea.Cmd { return t.choose(topic.ID) },
		})
	}
	items = append(items, components.MenuItem{
		Label:  "👋 Finish practice",
		Action: t.finish,
	})
	t.menu = components.NewMenu(items)
	return t
}

func (t *TopicsScreen) Init() tea.Cmd {
	return nil
}

func (t *TopicsScreen) Title() string {
	return "Choose a Topic"
}

func (t *TopicsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (t *TopicsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case logoutDoneMsg:
		// The summary is valid even when saving failed; the app logs that.
		if msg.Summary == nil {
			t.leaving = false
			t.errMsg = msg.Err.Error()
			return t, nil
		}
		sum := t.next.Summary(msg.Summary)
		return t, func() tea.Msg { return router.ReplaceScreenMsg{Screen: sum} }
	}

	if t.leaving {
		return t, nil
	}
	var cmd tea.Cmd
	t.menu, cmd = t.menu.Update(msg)
	return t, cmd
}

func (t *TopicsScreen) choose(id string) tea.Cmd {
	topic, err := t.practice.SelectTopic(id)
	if err != nil {
		t.errMsg = err.Error()
		return nil
	}
	t.errMsg = ""
	chat := t.next.Chat(topic)
	return func() tea.Msg { return router.PushScreenMsg{Screen: chat} }
}

func (t *TopicsScreen) finish() tea.Cmd {
	t.leaving = true
	// Saving progress must not be cut short by quitting.
	ctx, practice := context.WithoutCancel(t.ctx), t.practice
	return func() tea.Msg {
		sum, err := practice.Logout(ctx)
		return logoutDoneMsg{Summary: sum, Err: err}
	}
}

func (t *TopicsScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, theme.Title.Render(fmt.Sprintf("Hi %s! What shall we practise?", t.student.FirstName)))

	p := t.practice.Progress()
	if p.QuestionsAnswered > 0 {
		sections = append(sections, theme.Subtitle.Render(fmt.Sprintf(
			"%d answered, %d correct, best streak %d", p.QuestionsAnswered, p.CorrectAnswers, p.BestStreak)))
	}
	if p.DailyLimit > 0 {
		sections = append(sections, theme.Hint.Render(fmt.Sprintf("%d questions left today", p.LeftToday)))
	}

	menu := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(1, 2).
		Render(strings.TrimRight(t.menu.View(), "\n"))
	sections = append(sections, menu)

	switch {
	case t.leaving:
		sections = append(sections, theme.Hint.Render("Saving your progress..."))
	case t.errMsg != "":
		sections = append(sections, theme.Warning.Render(t.errMsg))
	}

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
