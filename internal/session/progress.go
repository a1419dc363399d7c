package session

import (
	"math"

	"github.com/abhisek/seatutor/internal/badges"
)

// Progress is the student's standing in the current session.
type Progress struct {
	StudentID   string
	StudentName string
	Topic       string

	QuestionsAnswered int
	CorrectAnswers    int
	AccuracyPercent   int
	CurrentStreak     int
	BestStreak        int

	// NextBadgeAt is the streak that earns the next tier, 0 past the last.
	NextBadgeAt int

	UsedToday  int
	DailyLimit int
	LeftToday  int // -1 when there is no limit

	Badges  []badges.Award
	Pending int
}

// Progress returns a snapshot of the session's counters.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress()
}

func (s *Session) progress() Progress {
	st := s.state
	used := st.UsageOn(s.today())
	limit := s.opts.Limits.PerStudent
	left := -1
	if limit > 0 {
		left = max(limit-used, 0)
	}

	awards := make([]badges.Award, len(s.badges.SessionBadges))
	copy(awards, s.badges.SessionBadges)

	return Progress{
		StudentID:         s.student.ID,
		StudentName:       s.student.Name,
		Topic:             s.topic,
		QuestionsAnswered: st.QuestionsAnswered,
		CorrectAnswers:    st.CorrectAnswers,
		AccuracyPercent:   int(math.Round(st.Accuracy() * 100)),
		CurrentStreak:     st.CurrentStreak,
		BestStreak:        st.BestStreak,
		NextBadgeAt:       badges.NextThreshold(st.CurrentStreak),
		UsedToday:         used,
		DailyLimit:        limit,
		LeftToday:         left,
		Badges:            awards,
		Pending:           len(st.PendingLog),
	}
}
