package chat

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/seatutor/internal/ui/components"
	"github.com/abhisek/seatutor/internal/ui/layout"
	"github.com/abhisek/seatutor/internal/ui/theme"
)

func (c *ChatScreen) View(width, height int) string {
	status := c.renderStatus(width)
	input := c.renderInput(width)

	// Status, divider, blank, transcript, blank, input.
	bodyHeight := height - lipgloss.Height(status) - lipgloss.Height(input) - 3
	body := c.renderTranscript(width, max(bodyHeight, 1))

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0)))
	return status + "\n" + divider + "\n\n" + body + "\n\n" + input
}

// renderStatus shows streak progress and today's allowance.
func (c *ChatScreen) renderStatus(width int) string {
	p := c.progress

	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Streak: %d", p.CurrentStreak))

	var bar string
	if p.NextBadgeAt > 0 {
		pct := float64(p.CurrentStreak) / float64(p.NextBadgeAt)
		bar = "  " + components.NewProgressBar(fmt.Sprintf("next badge at %d", p.NextBadgeAt), pct, false, 40).View()
	}

	right := fmt.Sprintf("Q %d  ✓ %d  %d%%", p.QuestionsAnswered, p.CorrectAnswers, p.AccuracyPercent)
	if p.DailyLimit > 0 {
		right += fmt.Sprintf("  left today %d", p.LeftToday)
	}
	right = lipgloss.NewStyle().Foreground(theme.TextDim).Render(right)

	line := left + bar
	pad := width - lipgloss.Width(line) - lipgloss.Width(right) - 4
	if pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}
	return line
}

// renderTranscript renders the newest lines that fit in height.
func (c *ChatScreen) renderTranscript(width, height int) string {
	wrap := min(width-6, layout.WrapWidth)
	text := lipgloss.NewStyle().Width(max(wrap, 10))

	var blocks []string
	for _, l := range c.lines {
		blocks = append(blocks, renderLine(l, text))
	}
	if c.waiting {
		blocks = append(blocks, theme.Hint.Render("Tutor is thinking..."))
	}

	rows := strings.Split(strings.Join(blocks, "\n\n"), "\n")
	if len(rows) > height {
		rows = rows[len(rows)-height:]
	}
	return lipgloss.NewStyle().PaddingLeft(2).Render(strings.Join(rows, "\n"))
}

func renderLine(l line, text lipgloss.Style) string {
	switch l.Kind {
	case lineStudent:
		return theme.StudentLabel.Render("You") + "\n" + text.Foreground(theme.Text).Render(l.Text)
	case lineTutor:
		return theme.TutorLabel.Render("Tutor") + "\n" + text.Foreground(theme.Text).Render(l.Text)
	case lineNotice:
		return text.Foreground(theme.Accent).Bold(true).Render(l.Text)
	default:
		return text.Foreground(theme.Error).Bold(true).Render(l.Text)
	}
}

func (c *ChatScreen) renderInput(width int) string {
	if c.blocked {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("Practice is closed for today. Press Esc to go back.")
	}
	return "  " + c.input.View()
}
