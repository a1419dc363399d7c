package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/seatutor/internal/store"
)

// StudentRow is one line of the class table.
type StudentRow struct {
	StudentID   string
	Name        string
	Questions   int
	Correct     int
	Accuracy    float64
	TimeMinutes int
	Badges      int
	Sessions    int
	LastActive  time.Time
}

// Overview is the class-wide summary.
type Overview struct {
	GeneratedAt     time.Time
	TotalStudents   int
	ActiveToday     int
	TotalQuestions  int
	AverageAccuracy float64

	// Students is sorted by questions answered, most first.
	Students []StudentRow
}

// Overview builds the class overview. Average accuracy is the mean of the
// per-student accuracies, so every student weighs the same.
func (b *Builder) Overview(ctx context.Context) (*Overview, error) {
	students, err := b.src.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	activity, err := b.src.QueryActivity(ctx, store.ActivityFilter{})
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}

	seconds := make(map[string]float64)
	for _, a := range activity {
		seconds[a.StudentID] += a.ElapsedSeconds
	}

	now := b.now()
	today := b.day(now)
	o := &Overview{GeneratedAt: now, TotalStudents: len(students)}

	var accSum float64
	for _, s := range students {
		row := StudentRow{
			StudentID:   s.StudentID,
			Name:        s.Name,
			Questions:   s.TotalQuestions,
			Correct:     s.CorrectAnswers,
			Accuracy:    percent(s.CorrectAnswers, s.TotalQuestions),
			TimeMinutes: int(seconds[s.StudentID] / 60),
			Badges:      s.Badges,
			Sessions:    s.Sessions,
			LastActive:  s.LastSeen.In(b.opts.Location),
		}
		o.Students = append(o.Students, row)
		o.TotalQuestions += row.Questions
		accSum += row.Accuracy
		if !s.LastSeen.IsZero() && b.day(s.LastSeen) == today {
			o.ActiveToday++
		}
	}
	if len(students) > 0 {
		o.AverageAccuracy = accSum / float64(len(students))
	}

	sort.SliceStable(o.Students, func(i, j int) bool {
		if o.Students[i].Questions != o.Students[j].Questions {
			return o.Students[i].Questions > o.Students[j].Questions
		}
		return o.Students[i].Name < o.Students[j].Name
	})
	return o, nil
}
