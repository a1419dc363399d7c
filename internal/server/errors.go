package server

import (
	"errors"
	"net/http"

	"github.com/abhisek/seatutor/internal/curriculum"
	"github.com/abhisek/seatutor/internal/llm"
	"github.com/abhisek/seatutor/internal/session"
	"github.com/abhisek/seatutor/internal/tutor"
)

// apiError is the HTTP rendering of a session or tutor error.
type apiError struct {
	Status  int
	Code    string
	Message string
}

// classify maps err onto a status, code and student-facing message.
// Unrecognised errors become a 500.
func classify(err error) apiError {
	var (
		rateLimit   *llm.ErrRateLimit
		unavailable *llm.ErrProviderUnavailable
		invalid     *llm.ErrInvalidResponse
	)

	switch {
	case errors.Is(err, session.ErrDailyLimit):
		return apiError{http.StatusTooManyRequests, CodeDailyLimit,
			"You've reached today's practice limit. Great work! Come back tomorrow. 🌅"}
	case errors.Is(err, session.ErrGlobalLimit):
		return apiError{http.StatusTooManyRequests, CodeGlobalLimit,
			"The class has used up today's practice time. Please try again tomorrow."}
	case errors.Is(err, session.ErrNotLoggedIn):
		return apiError{http.StatusUnauthorized, CodeNotLoggedIn, "Please enter your name to start."}
	case errors.Is(err, session.ErrNoTopic):
		return apiError{http.StatusBadRequest, CodeNoTopic, "Pick a topic first."}
	case errors.Is(err, curriculum.ErrUnknownTopic):
		return apiError{http.StatusBadRequest, CodeUnknownTopic, err.Error()}
	case errors.Is(err, session.ErrNameRequired), errors.Is(err, session.ErrEmptyMessage):
		return apiError{http.StatusBadRequest, CodeInvalidRequest, err.Error()}
	case errors.Is(err, session.ErrClosed):
		return apiError{http.StatusGone, CodeSessionClosed, "This session has ended. Please log in again."}
	case errors.As(err, &rateLimit), errors.As(err, &unavailable):
		return apiError{http.StatusServiceUnavailable, CodeTutorUnavailable,
			"The tutor is busy right now. Please try again in a moment."}
	case errors.As(err, &invalid), errors.Is(err, tutor.ErrEmptyReply):
		return apiError{http.StatusBadGateway, CodeTutorUnavailable,
			"The tutor could not answer that. Please try again."}
	default:
		return apiError{http.StatusInternalServerError, CodeInternalError, "Something went wrong."}
	}
}
