// Package report builds the teacher dashboard views: class overview,
// per-student detail, analytics and usage monitoring.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/seatutor/internal/store"
)

// ErrStudentNotFound is returned when a student detail lookup matches
// nobody.
var ErrStudentNotFound = errors.New("student not found")

// Thresholds used by the student detail view, in percent.
const (
	WeakBelow       = 70.0
	StrongAtOrAbove = 80.0
)

// Source is the read side of the store the reports need.
type Source interface {
	ListStudents(ctx context.Context) ([]store.StudentSummary, error)
	QueryActivity(ctx context.Context, f store.ActivityFilter) ([]store.ActivityEntry, error)
	QueryBadges(ctx context.Context, studentID string) ([]store.BadgeRecord, error)
	GlobalUsageSince(ctx context.Context, from string) ([]store.UsageRow, error)
}

// Repos adapts a Store's repositories to Source.
type Repos struct {
	store.StudentRepo
	store.ActivityRepo
	store.BadgeRepo
	store.UsageRepo
}

// FromStore returns a Source reading from s.
func FromStore(s *store.Store) Source {
	return Repos{
		StudentRepo:  s.StudentRepo(),
		ActivityRepo: s.ActivityRepo(),
		BadgeRepo:    s.BadgeRepo(),
		UsageRepo:    s.UsageRepo(),
	}
}

// Options configures a Builder.
type Options struct {
	// Location decides which calendar day an activity falls on.
	Location *time.Location

	// GlobalLimit is the class-wide daily allowance the usage view
	// measures against.
	GlobalLimit int

	Now func() time.Time
}

// Builder computes report views from a Source.
type Builder struct {
	src  Source
	opts Options
}

// NewBuilder creates a Builder. Missing options default to UTC, a limit of
// 1000 and the wall clock.
func NewBuilder(src Source, opts Options) *Builder {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.GlobalLimit <= 0 {
		opts.GlobalLimit = 1000
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Builder{src: src, opts: opts}
}

func (b *Builder) now() time.Time {
	return b.opts.Now().In(b.opts.Location)
}

func (b *Builder) day(t time.Time) string {
	return store.DayKey(t.In(b.opts.Location))
}

// startOfDay returns local midnight of t's day.
func (b *Builder) startOfDay(t time.Time) time.Time {
	t = t.In(b.opts.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, b.opts.Location)
}

// percent returns part/whole*100, or 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
