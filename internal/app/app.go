package app

import (
	"context"
	"fmt"
	"log/slog"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/seatutor/internal/curriculum"
	"github.com/abhisek/seatutor/internal/router"
	"github.com/abhisek/seatutor/internal/screen"
	"github.com/abhisek/seatutor/internal/screens/chat"
	"github.com/abhisek/seatutor/internal/screens/login"
	"github.com/abhisek/seatutor/internal/screens/summary"
	"github.com/abhisek/seatutor/internal/screens/topics"
	"github.com/abhisek/seatutor/internal/session"
	"github.com/abhisek/seatutor/internal/ui/layout"
)

// Options holds the dependencies the terminal app runs on.
type Options struct {
	Practice screen.Practice
	Logger   *slog.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router   *router.Router
	practice screen.Practice
	width    int
	height   int
}

// newAppModel creates a new AppModel starting at the login screen. Screens
// run their session calls under ctx.
func newAppModel(ctx context.Context, opts Options) AppModel {
	p := opts.Practice
	toTopics := func(st session.Student) screen.Screen {
		return topics.New(ctx, p, st, topics.Factories{
			Chat:    func(t curriculum.Topic) screen.Screen { return chat.New(ctx, p, t) },
			Summary: func(s *session.Summary) screen.Screen { return summary.New(s) },
		})
	}
	return AppModel{
		router:   router.New(login.New(ctx, p, toTopics)),
		practice: p,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.headerStats(), m.width)

	footerHints := []layout.KeyHint{
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = append([]layout.KeyHint{{Key: "Esc", Description: "Back"}}, footerHints...)
	}
	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

func (m AppModel) headerStats() layout.HeaderStats {
	if _, ok := m.practice.Student(); !ok || m.practice.Closed() {
		return layout.HeaderStats{}
	}
	p := m.practice.Progress()
	return layout.HeaderStats{
		Streak:   p.CurrentStreak,
		Correct:  p.CorrectAnswers,
		Answered: p.QuestionsAnswered,
		Badges:   len(p.Badges),
	}
}

// Run starts the Bubble Tea program. If the student quits without
// finishing, the session is logged out so pending activity is saved.
func Run(ctx context.Context, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	uiCtx, cancel := context.WithCancel(ctx)
	p := tea.NewProgram(newAppModel(uiCtx, opts), tea.WithContext(ctx))
	_, runErr := p.Run()
	// Abandon any reply still in flight so the logout below is not held up.
	cancel()
	if runErr != nil {
		runErr = fmt.Errorf("run program: %w", runErr)
	}

	if _, loggedIn := opts.Practice.Student(); loggedIn && !opts.Practice.Closed() {
		if _, err := opts.Practice.Logout(context.WithoutCancel(ctx)); err != nil {
			opts.Logger.Warn("failed to save progress on exit", "error", err)
		}
	}
	return runErr
}
