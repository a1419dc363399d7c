package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/seatutor/internal/badges"
	"github.com/abhisek/seatutor/internal/curriculum"
	"github.com/abhisek/seatutor/internal/llm"
	"github.com/abhisek/seatutor/internal/store"
	"github.com/abhisek/seatutor/internal/tracker"
	"github.com/abhisek/seatutor/internal/tutor"
)

// Deps are the collaborators shared by every session.
type Deps struct {
	Replier  Replier
	Activity ActivitySink
	Students StudentDirectory
	Usage    UsageCounter
	Badges   store.BadgeRepo

	// Mirror optionally receives a copy of every flushed batch.
	Mirror ActivitySink
}

// Student identifies who is practicing.
type Student struct {
	ID        string
	Name      string
	FirstName string
}

// ChatMessage is one line of the visible conversation.
type ChatMessage struct {
	Role    llm.Role
	Content string
	At      time.Time
}

// Session is one student's live practice run. All methods are safe for
// concurrent use; turns are serialised.
type Session struct {
	ID string

	mu     sync.Mutex
	deps   Deps
	opts   Options
	logger *slog.Logger

	student    Student
	loggedIn   bool
	closed     atomic.Bool // written under mu, read lock-free by Closed
	topic      string
	history    []llm.Message
	transcript []ChatMessage
	state      tracker.State
	badges     *badges.Service
	startedAt  time.Time
}

// New creates a session that is not yet logged in.
func New(deps Deps, opts Options) *Session {
	opts = opts.withDefaults()
	id := uuid.NewString()
	return &Session{
		ID:     id,
		deps:   deps,
		opts:   opts,
		logger: opts.Logger.With("session_id", id),
		badges: badges.NewService(deps.Badges),
	}
}

func (s *Session) now() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

func (s *Session) today() string {
	return store.DayKey(s.now())
}

// Login identifies the student, reusing the id of a known name or minting
// a new one. A store failure downgrades to a fresh, unsaved id.
func (s *Session) Login(ctx context.Context, name string) (Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return Student{}, ErrClosed
	}
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return Student{}, ErrNameRequired
	}

	now := s.now()
	id := s.resolveStudentID(ctx, name, now)

	s.student = Student{ID: id, Name: name, FirstName: tutor.FirstName(name)}
	s.loggedIn = true
	s.startedAt = now
	s.state = tracker.NewState(now)
	s.history = nil
	s.transcript = nil
	s.badges.ResetSession()

	if s.deps.Usage != nil {
		used, err := s.deps.Usage.UsageCount(ctx, s.state.DailyUsage.Date, id)
		if err != nil {
			s.logger.Warn("failed to read daily usage", "student_id", id, "error", err)
		} else {
			s.state.DailyUsage.Count = used
		}
	}

	s.logger = s.opts.Logger.With("session_id", s.ID, "student_id", id)
	s.logger.Info("student logged in", "name", name)
	return s.student, nil
}

func (s *Session) resolveStudentID(ctx context.Context, name string, now time.Time) string {
	if s.deps.Students != nil {
		existing, err := s.deps.Students.FindStudentByName(ctx, name)
		if err != nil {
			s.logger.Warn("failed to look up student", "name", name, "error", err)
		} else if existing != nil {
			return existing.StudentID
		}
	}

	id := NewStudentID()
	if s.deps.Students != nil {
		err := s.deps.Students.CreateStudent(ctx, store.StudentSummary{
			StudentID: id,
			Name:      name,
			FirstSeen: now,
			LastSeen:  now,
		})
		if err != nil {
			s.logger.Warn("failed to create student summary", "student_id", id, "error", err)
		}
	}
	return id
}

// NewStudentID returns a short, human-readable student identifier.
func NewStudentID() string {
	return "STU-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// SelectTopic sets the practice topic. The question timer restarts so the
// first answer on a new topic is not charged for time spent choosing.
func (s *Session) SelectTopic(topic string) (curriculum.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return curriculum.Topic{}, ErrClosed
	}
	if !s.loggedIn {
		return curriculum.Topic{}, ErrNotLoggedIn
	}
	t, err := curriculum.Lookup(topic)
	if err != nil {
		return curriculum.Topic{}, err
	}
	s.topic = t.Name
	s.state.QuestionStartedAt = s.now()
	s.logger.Debug("topic selected", "topic", t.Name)
	return t, nil
}

// Student returns the logged-in student.
func (s *Session) Student() (Student, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.student, s.loggedIn
}

// Topic returns the selected topic name, or "".
func (s *Session) Topic() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic
}

// Transcript returns a copy of the visible conversation.
func (s *Session) Transcript() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// CheckLimits reports ErrDailyLimit or ErrGlobalLimit when today's
// allowance is spent. Counts come from the daily aggregate; if it cannot be
// read the in-memory count stands in for the student and the global check
// is skipped.
func (s *Session) CheckLimits(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkLimits(ctx)
}

func (s *Session) checkLimits(ctx context.Context) error {
	day := s.today()
	lim := s.opts.Limits

	if lim.PerStudent > 0 {
		used := s.state.UsageOn(day)
		if s.deps.Usage != nil {
			n, err := s.deps.Usage.UsageCount(ctx, day, s.student.ID)
			if err != nil {
				s.logger.Warn("failed to read daily usage", "error", err)
			} else if n > used {
				used = n
			}
		}
		if used >= lim.PerStudent {
			return ErrDailyLimit
		}
	}

	if lim.Global > 0 && s.deps.Usage != nil {
		n, err := s.deps.Usage.GlobalUsage(ctx, day)
		if err != nil {
			s.logger.Warn("failed to read global usage", "error", err)
		} else if n >= lim.Global {
			return ErrGlobalLimit
		}
	}
	return nil
}

func (s *Session) usable() error {
	switch {
	case s.closed.Load():
		return ErrClosed
	case !s.loggedIn:
		return ErrNotLoggedIn
	case s.topic == "":
		return ErrNoTopic
	}
	return nil
}

