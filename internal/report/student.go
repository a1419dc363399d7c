package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/abhisek/seatutor/internal/store"
)

// RecentLimit is how many activity rows the student detail shows.
const RecentLimit = 20

// StrandStat is a student's or the class's results on one strand.
type StrandStat struct {
	Strand   string
	Correct  int
	Total    int
	Accuracy float64
}

// StudentDetail is one student's progress report.
type StudentDetail struct {
	Student     store.StudentSummary
	Accuracy    float64
	TimeMinutes int

	Strands []StrandStat // alphabetical
	Weak    []StrandStat // accuracy below WeakBelow
	Strong  []StrandStat // accuracy at or above StrongAtOrAbove

	Recent []store.ActivityEntry // newest first
	Badges []store.BadgeRecord   // newest first
}

// StudentDetail builds the report for the student whose id or name matches
// key, ignoring case.
func (b *Builder) StudentDetail(ctx context.Context, key string) (*StudentDetail, error) {
	student, err := b.findStudent(ctx, key)
	if err != nil {
		return nil, err
	}

	activity, err := b.src.QueryActivity(ctx, store.ActivityFilter{StudentID: student.StudentID})
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	badges, err := b.src.QueryBadges(ctx, student.StudentID)
	if err != nil {
		return nil, fmt.Errorf("query badges: %w", err)
	}

	d := &StudentDetail{
		Student:  *student,
		Accuracy: percent(student.CorrectAnswers, student.TotalQuestions),
		Strands:  strandStats(activity),
		Badges:   badges,
	}

	var seconds float64
	for _, a := range activity {
		seconds += a.ElapsedSeconds
	}
	d.TimeMinutes = int(seconds / 60)

	for _, s := range d.Strands {
		if s.Accuracy < WeakBelow {
			d.Weak = append(d.Weak, s)
		}
		if s.Accuracy >= StrongAtOrAbove {
			d.Strong = append(d.Strong, s)
		}
	}

	d.Recent = activity
	if len(d.Recent) > RecentLimit {
		d.Recent = d.Recent[:RecentLimit]
	}
	for i := range d.Recent {
		d.Recent[i].Timestamp = d.Recent[i].Timestamp.In(b.opts.Location)
	}
	return d, nil
}

func (b *Builder) findStudent(ctx context.Context, key string) (*store.StudentSummary, error) {
	key = strings.TrimSpace(key)
	students, err := b.src.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	for i := range students {
		if strings.EqualFold(students[i].StudentID, key) {
			return &students[i], nil
		}
	}
	for i := range students {
		if strings.EqualFold(students[i].Name, key) {
			return &students[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrStudentNotFound, key)
}

// strandStats groups entries by strand, alphabetically.
func strandStats(entries []store.ActivityEntry) []StrandStat {
	byStrand := make(map[string]*StrandStat)
	for _, e := range entries {
		s, ok := byStrand[e.Strand]
		if !ok {
			s = &StrandStat{Strand: e.Strand}
			byStrand[e.Strand] = s
		}
		s.Total++
		if e.Correct {
			s.Correct++
		}
	}

	out := make([]StrandStat, 0, len(byStrand))
	for _, s := range byStrand {
		s.Accuracy = percent(s.Correct, s.Total)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strand < out[j].Strand })
	return out
}
