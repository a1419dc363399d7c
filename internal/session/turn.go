package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/avast/retry-go"

	"github.com/abhisek/seatutor/internal/badges"
	"github.com/abhisek/seatutor/internal/llm"
	"github.com/abhisek/seatutor/internal/store"
	"github.com/abhisek/seatutor/internal/tracker"
	"github.com/abhisek/seatutor/internal/tutor"
)

// NoticeKind tags celebratory or informational messages shown beside a
// reply.
type NoticeKind string

const (
	NoticeBadge       NoticeKind = "badge"
	NoticeStreakEnded NoticeKind = "streak_ended"
)

// Notice is a message the app shows next to the tutor's reply.
type Notice struct {
	Kind    NoticeKind
	Message string
	Tier    badges.Tier // set for NoticeBadge
}

// TurnResult is the outcome of one student message.
type TurnResult struct {
	Reply   string
	Verdict tracker.Verdict
	Events  []tracker.Event
	Notices []Notice

	// Blocked is set when a daily limit stopped the turn before the tutor
	// was asked; the returned error says which.
	Blocked bool

	Progress Progress
}

// Turn relays text to the tutor, grades the reply and dispatches the
// resulting events. Persistence failures are logged, never returned: only
// limit, state and tutor errors reach the caller.
func (s *Session) Turn(ctx context.Context, text string) (*TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usable(); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if err := s.checkLimits(ctx); err != nil {
		s.logger.Info("turn blocked", "reason", err)
		return &TurnResult{Blocked: true, Progress: s.progress()}, err
	}

	reply, err := s.deps.Replier.Generate(llm.WithSession(ctx, s.ID), tutor.Input{
		History:   s.history,
		FirstName: s.student.FirstName,
		Topic:     s.topic,
		Text:      text,
	})
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	now := s.now()
	s.history = append(s.history, reply.Prompt, llm.Message{Role: llm.RoleAssistant, Content: reply.Text})
	s.transcript = append(s.transcript,
		ChatMessage{Role: llm.RoleUser, Content: text, At: now},
		ChatMessage{Role: llm.RoleAssistant, Content: reply.Text, At: now},
	)

	next, verdict, events := tracker.Apply(s.state, reply.Text, tracker.Turn{
		Now:         now,
		StudentID:   s.student.ID,
		StudentName: s.student.Name,
		Strand:      s.topic,
		FlushBatch:  s.opts.FlushBatch,
	})
	s.state = next

	result := &TurnResult{
		Reply:   reply.Text,
		Verdict: verdict,
		Events:  events,
	}
	result.Notices = s.dispatch(ctx, events)
	result.Progress = s.progress()

	s.logger.Debug("turn complete", "verdict", verdict, "streak", s.state.CurrentStreak, "events", len(events))
	return result, nil
}

// dispatch runs the side effects described by events.
func (s *Session) dispatch(ctx context.Context, events []tracker.Event) []Notice {
	var notices []Notice
	for _, e := range events {
		switch e := e.(type) {
		case tracker.BadgeAwarded:
			notices = append(notices, Notice{
				Kind:    NoticeBadge,
				Message: e.Tier.Message(s.student.FirstName),
				Tier:    e.Tier,
			})
			fresh, err := s.badges.Award(ctx, badges.Award{
				Tier:        e.Tier,
				Threshold:   e.Threshold,
				StudentID:   s.student.ID,
				StudentName: e.StudentName,
				SessionID:   s.ID,
				AwardedAt:   s.now(),
			})
			if err != nil {
				s.logger.Warn("failed to record badge", "tier", e.Tier, "error", err)
			} else if fresh {
				s.logger.Info("badge awarded", "tier", e.Tier, "streak", e.Threshold)
			}

		case tracker.StreakEnded:
			notices = append(notices, Notice{
				Kind:    NoticeStreakEnded,
				Message: badges.StreakEndedMessage(e.Length),
			})

		case tracker.ActivityLogged:
			if s.deps.Usage == nil {
				continue
			}
			day := store.DayKey(e.Entry.Timestamp)
			if err := s.deps.Usage.IncrementUsage(ctx, day, e.Entry.StudentID, 1); err != nil {
				s.logger.Warn("failed to update daily usage", "day", day, "error", err)
			}

		case tracker.FlushDue:
			if err := s.flush(ctx); err != nil {
				s.logger.Warn("activity flush failed", "pending", e.Pending, "error", err)
			}
		}
	}
	return notices
}

// Flush writes any pending activity now.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush(ctx)
}

// flush drains the pending log into the activity sink, retrying transient
// failures. Entries that still fail go back to the front of the queue,
// capped at MaxPending.
func (s *Session) flush(ctx context.Context) error {
	pending, next := s.state.TakePending()
	if len(pending) == 0 || s.deps.Activity == nil {
		return nil
	}

	entries := toActivityEntries(pending)
	err := retry.Do(
		func() error {
			return s.deps.Activity.AppendActivity(ctx, entries...)
		},
		retry.Context(ctx),
		retry.Attempts(s.opts.FlushAttempts),
		retry.Delay(s.opts.FlushDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		s.state = next.RequeuePending(pending, s.opts.MaxPending)
		return err
	}
	s.state = next
	s.logger.Debug("activity flushed", "entries", len(entries))

	if s.deps.Mirror != nil {
		if err := s.deps.Mirror.AppendActivity(ctx, entries...); err != nil {
			s.logger.Warn("activity mirror failed", "entries", len(entries), "error", err)
		}
	}
	return nil
}

func toActivityEntries(logs []tracker.LogEntry) []store.ActivityEntry {
	out := make([]store.ActivityEntry, len(logs))
	for i, l := range logs {
		out[i] = store.ActivityEntry{
			Timestamp:      l.Timestamp,
			StudentID:      l.StudentID,
			StudentName:    l.StudentName,
			QuestionType:   l.QuestionType,
			Strand:         l.Strand,
			Correct:        l.Correct,
			ElapsedSeconds: l.ElapsedSeconds,
		}
	}
	return out
}
