package session

//go:generate mockgen -source=ports.go -destination=../mocks/session/mock_ports.go -package=mock_session

import (
	"context"

	"github.com/abhisek/seatutor/internal/store"
	"github.com/abhisek/seatutor/internal/tutor"
)

// Replier produces the tutor's answer to one student message.
type Replier interface {
	Generate(ctx context.Context, in tutor.Input) (*tutor.Reply, error)
}

// ActivitySink receives flushed activity batches.
type ActivitySink interface {
	AppendActivity(ctx context.Context, entries ...store.ActivityEntry) error
}

// StudentDirectory resolves and maintains per-student summary rows.
type StudentDirectory interface {
	FindStudent(ctx context.Context, id string) (*store.StudentSummary, error)
	FindStudentByName(ctx context.Context, name string) (*store.StudentSummary, error)
	CreateStudent(ctx context.Context, s store.StudentSummary) error
	UpdateStudent(ctx context.Context, s store.StudentSummary) error
}

// UsageCounter maintains the per-day turn aggregates limits are read from.
type UsageCounter interface {
	IncrementUsage(ctx context.Context, day, studentID string, n int) error
	UsageCount(ctx context.Context, day, studentID string) (int, error)
	GlobalUsage(ctx context.Context, day string) (int, error)
}
