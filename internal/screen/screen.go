package screen

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/seatutor/internal/curriculum"
	"github.com/abhisek/seatutor/internal/session"
	"github.com/abhisek/seatutor/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Practice is the live tutoring session the screens drive.
// *session.Session satisfies it.
type Practice interface {
	Login(ctx context.Context, name string) (session.Student, error)
	SelectTopic(topic string) (curriculum.Topic, error)
	Turn(ctx context.Context, text string) (*session.TurnResult, error)
	Student() (session.Student, bool)
	Progress() session.Progress
	Logout(ctx context.Context) (*session.Summary, error)
	Closed() bool
}

var _ Practice = (*session.Session)(nil)
