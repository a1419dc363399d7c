package login

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/seatutor/internal/router"
	"github.com/abhisek/seatutor/internal/screen"
	"github.com/abhisek/seatutor/internal/session"
	"github.com/abhisek/seatutor/internal/ui/components"
	"github.com/abhisek/seatutor/internal/ui/layout"
	"github.com/abhisek/seatutor/internal/ui/theme"
)

// nameLimit bounds the name field.
const nameLimit = 60

type loginDoneMsg struct {
	Student session.Student
	Err     error
}

// LoginScreen asks for the student's name and logs them in.
type LoginScreen struct {
	ctx          context.Context
	practice     screen.Practice
	next         func(session.Student) screen.Screen
	input        components.TextInput
	busy         bool
	errMsg       string
	transitioned bool
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen. After a successful login the screen produced
// by next replaces it.
func New(ctx context.Context, practice screen.Practice, next func(session.Student) screen.Screen) *LoginScreen {
	return &LoginScreen{
		ctx:      ctx,
		practice: practice,
		next:     next,
		input:    components.NewTextInput("Your name", nameLimit),
	}
}

func (l *LoginScreen) Title() string {
	return ""
}

func (l *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Start"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (l *LoginScreen) Init() tea.Cmd {
	return l.input.Init()
}

func (l *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		l.busy = false
		if msg.Err != nil {
			l.errMsg = msg.Err.Error()
			return l, nil
		}
		return l, l.transition(msg.Student)

	case tea.KeyPressMsg:
		if l.busy {
			return l, nil
		}
		if msg.String() == "enter" {
			return l, l.submit()
		}
	}

	if l.busy {
		return l, nil
	}
	var cmd tea.Cmd
	l.input, cmd = l.input.Update(msg)
	return l, cmd
}

func (l *LoginScreen) submit() tea.Cmd {
	name := l.input.Value()
	if name == "" {
		l.errMsg = "Please type your name to begin."
		return nil
	}
	l.errMsg = ""
	l.busy = true
	ctx, practice := l.ctx, l.practice
	return func() tea.Msg {
		st, err := practice.Login(ctx, name)
		return loginDoneMsg{Student: st, Err: err}
	}
}

func (l *LoginScreen) transition(st session.Student) tea.Cmd {
	if l.transitioned {
		return nil
	}
	l.transitioned = true
	next := l.next(st)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (l *LoginScreen) View(width, height int) string {
	sections := []string{
		RenderBanner(width),
		"",
		lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render("SEA maths practice, one question at a time"),
		"",
		theme.Body.Render("What's your name?"),
		l.input.View(),
	}

	switch {
	case l.busy:
		sections = append(sections, "", theme.Hint.Render("Signing you in..."))
	case l.errMsg != "":
		sections = append(sections, "", theme.Warning.Render(l.errMsg))
	default:
		sections = append(sections, "", theme.Hint.Render("press Enter to start"))
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
