package session

import "errors"

var (
	// ErrDailyLimit means the student has used up today's turns.
	ErrDailyLimit = errors.New("daily practice limit reached")

	// ErrGlobalLimit means the class-wide allowance for today is used up.
	ErrGlobalLimit = errors.New("class daily limit reached")

	// ErrNoTopic means a turn was attempted before a topic was chosen.
	ErrNoTopic = errors.New("no topic selected")

	ErrNotLoggedIn  = errors.New("not logged in")
	ErrNameRequired = errors.New("student name is required")
	ErrEmptyMessage = errors.New("message is empty")
	ErrClosed       = errors.New("session is closed")
)

// IsLimit reports whether err is one of the daily limit errors.
func IsLimit(err error) bool {
	return errors.Is(err, ErrDailyLimit) || errors.Is(err, ErrGlobalLimit)
}
