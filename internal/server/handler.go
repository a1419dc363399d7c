package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abhisek/seatutor/internal/curriculum"
	"github.com/abhisek/seatutor/internal/session"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Count(),
	})
}

func (s *Server) handleTopics(c echo.Context) error {
	all := curriculum.AllTopics()
	topics := make([]topicDTO, 0, len(all))
	for _, t := range all {
		topics = append(topics, toTopicDTO(t))
	}
	return success(c, map[string]any{"topics": topics})
}

// handleLogin starts a fresh session for the named student. A session
// already bound to the cookie is logged out first so its activity is kept.
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, CodeInvalidRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	if prev, ok := s.current(c); ok {
		s.endSession(c, prev)
	}

	sess := s.sessions.Create()
	student, err := sess.Login(ctx, req.Name)
	if err != nil {
		s.sessions.Delete(sess.ID)
		return s.fail(c, err)
	}
	s.setSessionCookie(c, sess.ID)

	return success(c, map[string]any{
		"student":  toStudentDTO(student),
		"progress": toProgressDTO(sess.Progress()),
	})
}

func (s *Server) handleTopic(c echo.Context) error {
	sess, ok := s.current(c)
	if !ok {
		return s.invalidSession(c)
	}
	var req topicRequest
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, CodeInvalidRequest, "invalid request body")
	}

	topic, err := sess.SelectTopic(req.Topic)
	if err != nil {
		return s.fail(c, err)
	}
	return success(c, map[string]any{"topic": toTopicDTO(topic)})
}

func (s *Server) handleTurn(c echo.Context) error {
	sess, ok := s.current(c)
	if !ok {
		return s.invalidSession(c)
	}
	var req turnRequest
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, CodeInvalidRequest, "invalid request body")
	}

	res, err := sess.Turn(c.Request().Context(), req.Text)
	if err != nil {
		if res != nil && res.Blocked {
			e := classify(err)
			return c.JSON(e.Status, map[string]any{
				"error":    true,
				"code":     e.Code,
				"message":  e.Message,
				"progress": toProgressDTO(res.Progress),
			})
		}
		return s.fail(c, err)
	}

	dto := toTurnDTO(res)
	return success(c, map[string]any{
		"reply":    dto.Reply,
		"verdict":  dto.Verdict,
		"notices":  dto.Notices,
		"progress": dto.Progress,
	})
}

func (s *Server) handleProgress(c echo.Context) error {
	sess, ok := s.current(c)
	if !ok {
		return s.invalidSession(c)
	}
	return success(c, map[string]any{"progress": toProgressDTO(sess.Progress())})
}

func (s *Server) handleTranscript(c echo.Context) error {
	sess, ok := s.current(c)
	if !ok {
		return s.invalidSession(c)
	}
	type line struct {
		Role    string `json:"role"`
		Content string `json:"content"`
		At      string `json:"at"`
	}
	msgs := sess.Transcript()
	lines := make([]line, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, line{Role: string(m.Role), Content: m.Content, At: m.At.Format(time.RFC3339)})
	}
	return success(c, map[string]any{"messages": lines})
}

func (s *Server) handleLogout(c echo.Context) error {
	sess, ok := s.current(c)
	if !ok {
		return s.invalidSession(c)
	}
	summary, err := s.endSession(c, sess)
	s.clearSessionCookie(c)
	if summary == nil {
		return s.fail(c, err)
	}
	return success(c, map[string]any{"summary": toSummaryDTO(summary)})
}

// endSession logs sess out and forgets it. Persistence failures are logged;
// the summary is still returned.
func (s *Server) endSession(c echo.Context, sess *session.Session) (*session.Summary, error) {
	defer s.sessions.Delete(sess.ID)

	summary, err := sess.Logout(c.Request().Context())
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNotLoggedIn), errors.Is(err, session.ErrClosed):
		return nil, err
	default:
		s.logger.Warn("session ended with unsaved data", "session_id", sess.ID, "error", err)
	}
	return summary, nil
}

func (s *Server) invalidSession(c echo.Context) error {
	return failure(c, http.StatusUnauthorized, CodeInvalidSession, "Your session has expired. Please log in again.")
}

// fail renders err, logging the ones the student cannot act on.
func (s *Server) fail(c echo.Context, err error) error {
	e := classify(err)
	if e.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	}
	return failure(c, e.Status, e.Code, e.Message)
}
