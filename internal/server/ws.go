package server

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/abhisek/seatutor/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 8 << 10
)

// Message types on the WebSocket. Clients send ping, topic, turn and
// progress; the server answers with pong, topic, reply, progress or error.
const (
	msgPing     = "ping"
	msgPong     = "pong"
	msgReady    = "ready"
	msgTopic    = "topic"
	msgTurn     = "turn"
	msgReply    = "reply"
	msgProgress = "progress"
	msgError    = "error"
)

type wsInbound struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Topic string `json:"topic,omitempty"`
}

type wsReply struct {
	Type string `json:"type"`
	turnDTO
}

type wsError struct {
	Type     string       `json:"type"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Progress *progressDTO `json:"progress,omitempty"`
}

// handleWebSocket upgrades a logged-in session to a WebSocket and runs
// its turn loop. Each inbound message gets exactly one reply, in order.
func (s *Server) handleWebSocket(c echo.Context) error {
	sess, ok := s.current(c)
	if !ok {
		return s.invalidSession(c)
	}

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the error response.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	logger := s.logger.With("session_id", sess.ID)
	logger.Debug("websocket connected")

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go pingLoop(ctx, conn)

	if err := writeJSON(conn, map[string]any{
		"type":     msgReady,
		"progress": toProgressDTO(sess.Progress()),
	}); err != nil {
		return nil
	}

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket closed", "error", err)
			}
			return nil
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		// Re-resolve on every message so idle expiry and logout elsewhere
		// end this loop too.
		live, ok := s.sessions.Get(sess.ID)
		if !ok {
			_ = writeJSON(conn, wsError{Type: msgError, Code: CodeSessionClosed,
				Message: "This session has ended. Please log in again."})
			return nil
		}

		if err := writeJSON(conn, s.respond(ctx, live, in)); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return nil
		}
	}
}

// respond handles one inbound message.
func (s *Server) respond(ctx context.Context, sess *session.Session, in wsInbound) any {
	switch in.Type {
	case msgPing:
		return map[string]any{"type": msgPong}

	case msgTopic:
		topic, err := sess.SelectTopic(in.Topic)
		if err != nil {
			return s.wsFailure(sess, err, nil)
		}
		return map[string]any{"type": msgTopic, "topic": toTopicDTO(topic)}

	case msgTurn:
		res, err := sess.Turn(ctx, in.Text)
		if err != nil {
			return s.wsFailure(sess, err, res)
		}
		return wsReply{Type: msgReply, turnDTO: toTurnDTO(res)}

	case msgProgress:
		return map[string]any{"type": msgProgress, "progress": toProgressDTO(sess.Progress())}

	default:
		return wsError{Type: msgError, Code: CodeInvalidRequest, Message: "unknown message type: " + in.Type}
	}
}

func (s *Server) wsFailure(sess *session.Session, err error, res *session.TurnResult) wsError {
	e := classify(err)
	if e.Status >= 500 {
		s.logger.Error("websocket turn failed", "session_id", sess.ID, "error", err)
	}
	out := wsError{Type: msgError, Code: e.Code, Message: e.Message}
	if res != nil && res.Blocked {
		p := toProgressDTO(res.Progress)
		out.Progress = &p
	}
	return out
}

func writeJSON(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// pingLoop keeps the read deadline alive with control pings. WriteControl
// is safe alongside the turn loop's writes.
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
