package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/seatutor/internal/badges"
	"github.com/abhisek/seatutor/internal/store"
)

// Summary is what the student sees when leaving.
type Summary struct {
	Student           Student
	Topic             string
	Duration          time.Duration
	QuestionsAnswered int
	CorrectAnswers    int
	AccuracyPercent   int
	BestStreak        int
	Badges            []badges.Award
}

// Logout flushes pending activity, folds the session into the student's
// summary row and closes the session. The returned summary is valid even
// when err is non-nil; err only reports what could not be persisted.
func (s *Session) Logout(ctx context.Context) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, ErrClosed
	}
	if !s.loggedIn {
		s.closed.Store(true)
		return nil, ErrNotLoggedIn
	}

	now := s.now()
	p := s.progress()
	sum := &Summary{
		Student:           s.student,
		Topic:             s.topic,
		Duration:          now.Sub(s.startedAt),
		QuestionsAnswered: p.QuestionsAnswered,
		CorrectAnswers:    p.CorrectAnswers,
		AccuracyPercent:   p.AccuracyPercent,
		BestStreak:        p.BestStreak,
		Badges:            p.Badges,
	}

	var errs []error
	if err := s.flush(ctx); err != nil {
		s.logger.Warn("final activity flush failed", "pending", len(s.state.PendingLog), "error", err)
		errs = append(errs, fmt.Errorf("flush activity: %w", err))
	}
	if err := s.updateStudentSummary(ctx, now); err != nil {
		s.logger.Warn("failed to update student summary", "error", err)
		errs = append(errs, fmt.Errorf("update summary: %w", err))
	}

	s.closed.Store(true)
	s.logger.Info("student logged out",
		"questions", sum.QuestionsAnswered,
		"correct", sum.CorrectAnswers,
		"best_streak", sum.BestStreak,
		"duration", sum.Duration.Round(time.Second))
	return sum, errors.Join(errs...)
}

// updateStudentSummary is a read-modify-write of the student's row.
// Concurrent sessions for the same student race; the last writer wins.
func (s *Session) updateStudentSummary(ctx context.Context, now time.Time) error {
	if s.deps.Students == nil {
		return nil
	}
	row, err := s.deps.Students.FindStudent(ctx, s.student.ID)
	if err != nil {
		return err
	}

	st := s.state
	if row == nil {
		return s.deps.Students.CreateStudent(ctx, store.StudentSummary{
			StudentID:      s.student.ID,
			Name:           s.student.Name,
			FirstSeen:      s.startedAt,
			LastSeen:       now,
			TotalQuestions: st.QuestionsAnswered,
			CorrectAnswers: st.CorrectAnswers,
			BestStreak:     st.BestStreak,
			Sessions:       1,
			Badges:         s.badges.Recorded,
		})
	}

	row.Name = s.student.Name
	row.LastSeen = now
	row.TotalQuestions += st.QuestionsAnswered
	row.CorrectAnswers += st.CorrectAnswers
	row.BestStreak = max(row.BestStreak, st.BestStreak)
	row.Sessions++
	row.Badges += s.badges.Recorded
	return s.deps.Students.UpdateStudent(ctx, *row)
}

// Closed reports whether Logout has run. It does not wait for a turn in
// flight.
func (s *Session) Closed() bool {
	return s.closed.Load()
}
