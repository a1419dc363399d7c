package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/abhisek/seatutor/internal/store"
)

// TopPerformerCount is how many students the analytics view ranks.
const TopPerformerCount = 5

// DayCount is the number of questions on one local calendar day.
type DayCount struct {
	Day   string // YYYY-MM-DD
	Count int
}

// Analytics summarises class activity.
type Analytics struct {
	TotalQuestions int

	// Strands is sorted by questions, most practiced first.
	Strands []StrandStat

	ByHour [24]int
	ByDay  []DayCount // oldest first

	TopPerformers []StudentRow
}

// Analytics builds the class analytics view. Top performers need at least
// one answered question.
func (b *Builder) Analytics(ctx context.Context) (*Analytics, error) {
	activity, err := b.src.QueryActivity(ctx, store.ActivityFilter{})
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	students, err := b.src.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	a := &Analytics{TotalQuestions: len(activity), Strands: strandStats(activity)}
	sort.SliceStable(a.Strands, func(i, j int) bool { return a.Strands[i].Total > a.Strands[j].Total })

	days := make(map[string]int)
	for _, e := range activity {
		local := e.Timestamp.In(b.opts.Location)
		a.ByHour[local.Hour()]++
		days[store.DayKey(local)]++
	}
	a.ByDay = sortedDays(days)

	for _, s := range students {
		if s.TotalQuestions == 0 {
			continue
		}
		a.TopPerformers = append(a.TopPerformers, StudentRow{
			StudentID: s.StudentID,
			Name:      s.Name,
			Questions: s.TotalQuestions,
			Correct:   s.CorrectAnswers,
			Accuracy:  percent(s.CorrectAnswers, s.TotalQuestions),
		})
	}
	sort.SliceStable(a.TopPerformers, func(i, j int) bool {
		x, y := a.TopPerformers[i], a.TopPerformers[j]
		if x.Accuracy != y.Accuracy {
			return x.Accuracy > y.Accuracy
		}
		return x.Questions > y.Questions
	})
	if len(a.TopPerformers) > TopPerformerCount {
		a.TopPerformers = a.TopPerformers[:TopPerformerCount]
	}
	return a, nil
}

func sortedDays(days map[string]int) []DayCount {
	out := make([]DayCount, 0, len(days))
	for d, n := range days {
		out = append(out, DayCount{Day: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}
