package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/seatutor/internal/screen"
	"github.com/abhisek/seatutor/internal/session"
	"github.com/abhisek/seatutor/internal/ui/layout"
	"github.com/abhisek/seatutor/internal/ui/theme"
)

// SummaryScreen displays the end-of-practice summary.
type SummaryScreen struct {
	summary *session.Summary
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(summary *session.Summary) *SummaryScreen {
	return &SummaryScreen{summary: summary}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Practice Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Exit"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	center := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder

	b.WriteString(center(theme.Title, fmt.Sprintf("Well done, %s!", sum.Student.FirstName)))
	b.WriteString("\n\n")

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	b.WriteString(center(theme.Hint, fmt.Sprintf("Practice time: %d:%02d", mins, secs)))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Questions: %d        Correct: %d        Accuracy: %d%%        Best streak: %d",
		sum.QuestionsAnswered, sum.CorrectAnswers, sum.AccuracyPercent, sum.BestStreak)
	b.WriteString(center(theme.Body, stats))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Badges")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	if len(sum.Badges) == 0 {
		b.WriteString(center(theme.Hint, "No badges this time. Get 5 in a row to earn your first star!"))
		b.WriteString("\n")
	}
	for _, a := range sum.Badges {
		line := fmt.Sprintf("%s %s  (%d in a row)", a.Tier.Icon(), a.Tier.Title(), a.Threshold)
		b.WriteString(center(theme.Notice, line))
		b.WriteString("\n")
	}

	return b.String()
}
