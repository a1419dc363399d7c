package tracker

import "github.com/abhisek/seatutor/internal/badges"

// Event is emitted by Apply for the caller to dispatch.
type Event interface {
	isEvent()
}

// BadgeAwarded fires when the streak lands exactly on a badge threshold.
type BadgeAwarded struct {
	Tier        badges.Tier
	Threshold   int
	StudentName string
}

// StreakEnded fires when an incorrect answer resets a streak of at least
// badges.BaseThreshold.
type StreakEnded struct {
	Length      int
	StudentName string
}

// ActivityLogged fires for every graded turn.
type ActivityLogged struct {
	Entry LogEntry
}

// FlushDue fires when the pending log has reached the flush batch size.
type FlushDue struct {
	Pending int
}

func (BadgeAwarded) isEvent()   {}
func (StreakEnded) isEvent()    {}
func (ActivityLogged) isEvent() {}
func (FlushDue) isEvent()       {}
