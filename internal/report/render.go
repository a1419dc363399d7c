package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const timeLayout = "2006-01-02 15:04:05"

// Renderer writes report views as terminal text.
type Renderer struct {
	w      io.Writer
	bold   *color.Color
	faint  *color.Color
	green  *color.Color
	yellow *color.Color
	red    *color.Color
}

// NewRenderer writes to w. Colour follows color.NoColor.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{
		w:      w,
		bold:   color.New(color.Bold),
		faint:  color.New(color.Faint),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
	}
}

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

func (r *Renderer) heading(title string) {
	r.printf("%s\n%s\n", r.bold.Sprint(title), strings.Repeat("─", 60))
}

// accuracy colours a percentage by the weak and strong thresholds.
func (r *Renderer) accuracy(pct float64) string {
	s := fmt.Sprintf("%.1f%%", pct)
	switch {
	case pct >= StrongAtOrAbove:
		return r.green.Sprint(s)
	case pct < WeakBelow:
		return r.red.Sprint(s)
	default:
		return r.yellow.Sprint(s)
	}
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

// Overview renders the class overview.
func (r *Renderer) Overview(o *Overview) {
	r.heading("📊 Class Overview")
	if o.TotalStudents == 0 {
		r.printf("No student data yet. Students will appear here once they start practicing!\n")
		return
	}

	r.printf("Total Students:      %d\n", o.TotalStudents)
	r.printf("Active Today:        %d\n", o.ActiveToday)
	r.printf("Total Questions:     %d\n", o.TotalQuestions)
	r.printf("Class Avg Accuracy:  %s\n\n", r.accuracy(o.AverageAccuracy))

	r.printf("%-24s  %9s  %7s  %9s  %9s  %s\n", "Student Name", "Questions", "Correct", "Accuracy", "Time(min)", "Last Active")
	r.printf("%s\n", strings.Repeat("─", 90))
	for _, s := range o.Students {
		last := "-"
		if !s.LastActive.IsZero() {
			last = s.LastActive.Format(timeLayout)
		}
		r.printf("%-24s  %9d  %7d  %9s  %9d  %s\n",
			truncate(s.Name, 24), s.Questions, s.Correct,
			fmt.Sprintf("%.1f%%", s.Accuracy), s.TimeMinutes, last)
	}
}

// StudentDetail renders one student's progress report.
func (r *Renderer) StudentDetail(d *StudentDetail) {
	r.heading(fmt.Sprintf("📊 %s - Progress Report", d.Student.Name))

	r.printf("Student ID:       %s\n", d.Student.StudentID)
	r.printf("Total Questions:  %d\n", d.Student.TotalQuestions)
	r.printf("Correct Answers:  %d (%s)\n", d.Student.CorrectAnswers, r.accuracy(d.Accuracy))
	r.printf("Best Streak:      %d\n", d.Student.BestStreak)
	r.printf("Time Spent:       %d min\n", d.TimeMinutes)
	r.printf("Badges Earned:    %d\n\n", len(d.Badges))

	r.printf("%s\n", r.bold.Sprint("📈 Performance by Strand"))
	if len(d.Strands) == 0 {
		r.printf("No activity recorded yet.\n")
	}
	for _, s := range d.Strands {
		r.printf("  %-14s %3d/%-3d  %s\n", s.Strand, s.Correct, s.Total, r.accuracy(s.Accuracy))
	}

	r.printf("\n%s\n", r.bold.Sprint("🏆 Badges Earned"))
	if len(d.Badges) == 0 {
		r.printf("No badges earned yet. Keep practicing!\n")
	}
	for _, b := range d.Badges {
		r.printf("  %s (streak %d) - earned on %s\n", strings.ToUpper(b.Tier), b.Streak, b.AwardedAt.Format("2006-01-02"))
	}

	if len(d.Strands) > 0 {
		r.printf("\n%s\n", r.bold.Sprint("⚠️ Areas Needing Attention"))
		if len(d.Weak) == 0 {
			r.printf("%s\n", r.green.Sprint("Great performance across all strands! 🎉"))
		}
		for _, s := range d.Weak {
			r.printf("  %s\n", r.yellow.Sprintf("%s: %.1f%% accuracy - needs more practice", s.Strand, s.Accuracy))
		}

		r.printf("\n%s\n", r.bold.Sprint("✅ Strengths"))
		for _, s := range d.Strong {
			r.printf("  %s\n", r.green.Sprintf("%s: %.1f%% accuracy - Excellent! 💪", s.Strand, s.Accuracy))
		}
	}

	if len(d.Recent) > 0 {
		r.printf("\n%s\n", r.bold.Sprint("📅 Recent Activity"))
		r.printf("  %-19s  %-14s  %-12s  %-6s  %s\n", "Time", "Question Type", "Strand", "Result", "Time (sec)")
		for _, a := range d.Recent {
			result := "❌"
			if a.Correct {
				result = "✅"
			}
			r.printf("  %-19s  %-14s  %-12s  %-6s  %.0f\n",
				a.Timestamp.Format(timeLayout), truncate(a.QuestionType, 14), a.Strand, result, a.ElapsedSeconds)
		}
	}
}

// Analytics renders class analytics with text bars.
func (r *Renderer) Analytics(a *Analytics) {
	r.heading("📊 Analytics & Insights")
	if a.TotalQuestions == 0 {
		r.printf("Not enough data yet for analytics.\n")
		return
	}

	r.printf("%s\n", r.bold.Sprint("🎯 Most Practiced Topics"))
	for _, s := range a.Strands {
		r.printf("  %-14s %5d  %5.1f%%  %s\n", s.Strand, s.Total, percent(s.Total, a.TotalQuestions), bar(s.Total, a.TotalQuestions, 30))
	}

	r.printf("\n%s\n", r.bold.Sprint("📈 Accuracy by Strand"))
	for _, s := range a.Strands {
		r.printf("  %-14s %s\n", s.Strand, r.accuracy(s.Accuracy))
	}

	r.printf("\n%s\n", r.bold.Sprint("⏰ Activity by Hour of Day"))
	peak := 0
	for _, n := range a.ByHour {
		peak = max(peak, n)
	}
	for h, n := range a.ByHour {
		if n == 0 {
			continue
		}
		r.printf("  %02d:00  %5d  %s\n", h, n, bar(n, peak, 30))
	}

	r.printf("\n%s\n", r.bold.Sprint("📆 Activity Over Time"))
	for _, d := range a.ByDay {
		r.printf("  %s  %5d\n", d.Day, d.Count)
	}

	r.printf("\n%s\n", r.bold.Sprint("🏆 Top Performers"))
	for i, s := range a.TopPerformers {
		r.printf("  %d. %-24s %5d questions  %s\n", i+1, truncate(s.Name, 24), s.Questions, r.accuracy(s.Accuracy))
	}
}

// Usage renders usage monitoring.
func (r *Renderer) Usage(u *Usage) {
	r.heading("📊 System Usage & Limits")

	r.printf("Today's Usage:  %d/%d (%.1f%%)  %s\n", u.Today.Used, u.Today.Limit, u.Today.Percent, bar(u.Today.Used, u.Today.Limit, 20))
	r.printf("This Week:      %d/%d (%.1f%%)\n", u.Week.Used, u.Week.Limit, u.Week.Percent)
	r.printf("This Month:     %d/%d (%.1f%%)\n", u.Month.Used, u.Month.Limit, u.Month.Percent)
	if u.OverageCost > 0 {
		r.printf("Est. Overage:   %s\n", r.red.Sprintf("$%.2f over limit", u.OverageCost))
	} else {
		r.printf("Current Cost:   $0.00 (within free tier)\n")
	}
	r.printf("\n")

	switch u.Level {
	case UsageCritical:
		r.printf("%s\n", r.red.Sprintf("⚠️ WARNING: Approaching daily limit! (%d/%d)", u.Today.Used, u.Today.Limit))
	case UsageHigh:
		r.printf("%s\n", r.yellow.Sprintf("⚠️ High usage today: %d/%d", u.Today.Used, u.Today.Limit))
	default:
		r.printf("%s\n", r.green.Sprintf("✅ Usage is healthy: %d/%d", u.Today.Used, u.Today.Limit))
	}

	if len(u.Trend) > 0 {
		r.printf("\n%s\n", r.bold.Sprint("📈 Daily Usage Trend (last 30 days)"))
		for _, d := range u.Trend {
			r.printf("  %s  %5d  %s\n", d.Day, d.Count, bar(d.Count, u.Today.Limit, 30))
		}
	}

	r.printf("\n%s\n", r.bold.Sprint("🔥 Most Active Students Today"))
	if len(u.TopToday) == 0 {
		r.printf("No activity today yet.\n")
	}
	for _, s := range u.TopToday {
		r.printf("  %-24s %5d\n", truncate(s.Name, 24), s.Count)
	}
}

// Insight renders an LLM insight.
func (r *Renderer) Insight(in *Insight) {
	r.heading("💡 Insight")
	r.printf("%s\n", in.Summary)
	list := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		r.printf("\n%s\n", r.bold.Sprint(title))
		for _, it := range items {
			r.printf("  • %s\n", it)
		}
	}
	list("Strengths", in.Strengths)
	list("Focus Areas", in.FocusAreas)
	list("Suggestions", in.Suggestions)
	r.printf("\n%s\n", r.faint.Sprintf("Generated %s", in.GeneratedAt.Format(timeLayout)))
}

// bar draws n out of total as a bar width cells wide, capped at full.
func bar(n, total, width int) string {
	if total <= 0 {
		return ""
	}
	filled := n * width / total
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
