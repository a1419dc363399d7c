package tracker

import (
	"time"

	"github.com/abhisek/seatutor/internal/badges"
)

// Turn carries the context of one graded reply.
type Turn struct {
	Now          time.Time // in the session's local zone
	StudentID    string
	StudentName  string
	Strand       string
	QuestionType string // defaults to DefaultQuestionType
	FlushBatch   int    // defaults to FlushBatchSize
}

// Apply classifies reply and folds the verdict into state. It performs no
// I/O; the returned events describe the side effects the caller should run.
func Apply(state State, reply string, turn Turn) (State, Verdict, []Event) {
	v := Classify(reply)
	if !v.IsFeedback() {
		return state, v, nil
	}

	next := state
	next.PendingLog = append([]LogEntry(nil), state.PendingLog...)
	var events []Event

	next.QuestionsAnswered++
	correct := v == VerdictCorrect
	if correct {
		next.CorrectAnswers++
		next.CurrentStreak++
		if next.CurrentStreak > next.BestStreak {
			next.BestStreak = next.CurrentStreak
		}
		if tier, ok := badges.TierForStreak(next.CurrentStreak); ok {
			events = append(events, BadgeAwarded{
				Tier:        tier,
				Threshold:   next.CurrentStreak,
				StudentName: turn.StudentName,
			})
		}
	} else {
		if next.CurrentStreak >= badges.BaseThreshold {
			events = append(events, StreakEnded{
				Length:      next.CurrentStreak,
				StudentName: turn.StudentName,
			})
		}
		next.CurrentStreak = 0
	}

	elapsed := 0.0
	if !state.QuestionStartedAt.IsZero() {
		elapsed = turn.Now.Sub(state.QuestionStartedAt).Seconds()
		if elapsed < 0 {
			elapsed = 0
		}
	}

	qtype := turn.QuestionType
	if qtype == "" {
		qtype = DefaultQuestionType
	}
	entry := LogEntry{
		Timestamp:      turn.Now,
		StudentID:      turn.StudentID,
		StudentName:    turn.StudentName,
		QuestionType:   qtype,
		Strand:         turn.Strand,
		Correct:        correct,
		ElapsedSeconds: elapsed,
	}
	next.PendingLog = append(next.PendingLog, entry)
	events = append(events, ActivityLogged{Entry: entry})

	today := turn.Now.Format(dateLayout)
	if next.DailyUsage.Date != today {
		next.DailyUsage = DailyUsage{Date: today}
	}
	next.DailyUsage.Count++

	batch := turn.FlushBatch
	if batch <= 0 {
		batch = FlushBatchSize
	}
	if len(next.PendingLog) >= batch {
		events = append(events, FlushDue{Pending: len(next.PendingLog)})
	}

	next.QuestionStartedAt = turn.Now
	return next, v, events
}
