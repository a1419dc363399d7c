package login

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/seatutor/internal/llm"
	"github.com/abhisek/seatutor/internal/router"
	"github.com/abhisek/seatutor/internal/screen"
	"github.com/abhisek/seatutor/internal/session"
	"github.com/abhisek/seatutor/internal/tutor"
)

// stubScreen is a minimal screen implementation for testing.
type stubScreen struct{ student session.Student }

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "topics" }
func (s *stubScreen) Title() string                           { return "Topics" }

func newPractice() *session.Session {
	return session.New(session.Deps{
		Replier: tutor.NewGenerator(llm.NewMockProvider(), tutor.DefaultConfig()),
	}, session.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func newTestLogin(p screen.Practice) (*LoginScreen, *int) {
	calls := 0
	next := func(st session.Student) screen.Screen {
		calls++
		return &stubScreen{student: st}
	}
	return New(context.Background(), p, next), &calls
}

func enter() tea.Msg {
	return tea.KeyPressMsg{Code: tea.KeyEnter}
}

func TestLoginReplacesScreen(t *testing.T) {
	l, calls := newTestLogin(newPractice())
	l.input.Model.SetValue("  Asha Ramdass ")

	_, cmd := l.Update(enter())
	if cmd == nil {
		t.Fatal("expected login command on Enter")
	}
	if !l.busy {
		t.Error("expected screen to be busy while logging in")
	}

	done, ok := cmd().(loginDoneMsg)
	if !ok {
		t.Fatalf("expected loginDoneMsg, got %T", cmd())
	}
	if done.Err != nil {
		t.Fatalf("unexpected login error: %v", done.Err)
	}
	if done.Student.FirstName != "Asha" {
		t.Errorf("FirstName = %q, want %q", done.Student.FirstName, "Asha")
	}

	_, cmd = l.Update(done)
	if cmd == nil {
		t.Fatal("expected transition command after login")
	}
	replace, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if got := replace.Screen.(*stubScreen).student.Name; got != "Asha Ramdass" {
		t.Errorf("next screen student = %q, want %q", got, "Asha Ramdass")
	}
	if *calls != 1 {
		t.Errorf("next should be called once, got %d", *calls)
	}

	// A second result must not transition again.
	if _, cmd := l.Update(done); cmd != nil {
		t.Error("expected no second transition")
	}
}

func TestLoginRequiresName(t *testing.T) {
	l, calls := newTestLogin(newPractice())

	_, cmd := l.Update(enter())
	if cmd != nil {
		t.Error("expected no command for an empty name")
	}
	if !strings.Contains(l.View(80, 24), "type your name") {
		t.Error("expected a prompt to type a name")
	}
	if *calls != 0 {
		t.Errorf("next should not be called, got %d", *calls)
	}
}

func TestLoginErrorStays(t *testing.T) {
	p := newPractice()
	if _, err := p.Logout(context.Background()); err == nil {
		t.Fatal("expected logout before login to fail")
	}

	l, calls := newTestLogin(p)
	l.input.Model.SetValue("Kai")
	_, cmd := l.Update(enter())
	_, cmd = l.Update(cmd())

	if cmd != nil {
		t.Error("expected no transition after a failed login")
	}
	if l.busy {
		t.Error("expected busy to clear after the result")
	}
	if !strings.Contains(l.View(80, 24), session.ErrClosed.Error()) {
		t.Error("expected the error in the view")
	}
	if *calls != 0 {
		t.Errorf("next should not be called, got %d", *calls)
	}
}

func TestLoginIgnoresKeysWhileBusy(t *testing.T) {
	l, _ := newTestLogin(newPractice())
	l.input.Model.SetValue("Kai")
	l.Update(enter())

	if _, cmd := l.Update(enter()); cmd != nil {
		t.Error("expected Enter to be ignored while busy")
	}
}

func TestRenderBanner(t *testing.T) {
	if got := RenderBanner(40); !strings.Contains(got, bannerCompact) {
		t.Errorf("expected compact banner for narrow terminals, got %q", got)
	}
	if got := RenderBanner(100); strings.Contains(got, bannerCompact) {
		t.Error("expected full banner for wide terminals")
	}
}
