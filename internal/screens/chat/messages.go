package chat

import (
	"github.com/abhisek/seatutor/internal/session"
)

// turnDoneMsg carries the result of one tutor turn.
type turnDoneMsg struct {
	Result *session.TurnResult
	Err    error
}

// lineKind styles a transcript line.
type lineKind int

const (
	lineStudent lineKind = iota
	lineTutor
	lineNotice
	lineWarning
)

// line is one entry in the visible transcript.
type line struct {
	Kind lineKind
	Text string
}
