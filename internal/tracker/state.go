package tracker

import "time"

// FlushBatchSize is the default pending-log length at which a flush is
// requested.
const FlushBatchSize = 5

// DefaultQuestionType labels activity rows produced by chat turns.
const DefaultQuestionType = "Question"

// State is the per-session progress record. It is a value type: Apply
// returns a new State and never mutates its input.
type State struct {
	QuestionsAnswered int
	CorrectAnswers    int
	CurrentStreak     int
	BestStreak        int

	DailyUsage DailyUsage

	// PendingLog holds activity entries not yet persisted, oldest first.
	PendingLog []LogEntry

	// QuestionStartedAt is when the current question was issued.
	QuestionStartedAt time.Time
}

// DailyUsage counts graded turns for one calendar day.
type DailyUsage struct {
	Date  string // YYYY-MM-DD in the session's local zone
	Count int
}

// LogEntry is one graded turn awaiting persistence.
type LogEntry struct {
	Timestamp      time.Time
	StudentID      string
	StudentName    string
	QuestionType   string
	Strand         string
	Correct        bool
	ElapsedSeconds float64
}

// NewState returns an empty state whose first question starts at now.
func NewState(now time.Time) State {
	return State{
		DailyUsage:        DailyUsage{Date: now.Format(dateLayout)},
		QuestionStartedAt: now,
	}
}

// Accuracy returns CorrectAnswers / QuestionsAnswered, or 0 when nothing
// has been answered.
func (s State) Accuracy() float64 {
	if s.QuestionsAnswered == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.QuestionsAnswered)
}

// UsageOn returns the daily count as seen on date; a stale date reads as 0.
func (s State) UsageOn(date string) int {
	if s.DailyUsage.Date != date {
		return 0
	}
	return s.DailyUsage.Count
}

// TakePending returns the pending entries and a copy of s with the queue
// emptied.
func (s State) TakePending() ([]LogEntry, State) {
	pending := s.PendingLog
	s.PendingLog = nil
	return pending, s
}

// RequeuePending puts entries that failed to persist back at the front of
// the queue, keeping at most limit entries (the newest). limit <= 0 keeps all.
func (s State) RequeuePending(entries []LogEntry, limit int) State {
	merged := make([]LogEntry, 0, len(entries)+len(s.PendingLog))
	merged = append(merged, entries...)
	merged = append(merged, s.PendingLog...)
	if limit > 0 && len(merged) > limit {
		merged = merged[len(merged)-limit:]
	}
	s.PendingLog = merged
	return s
}

const dateLayout = "2006-01-02"
