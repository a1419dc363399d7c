package badges

import (
	"context"
	"time"

	"github.com/abhisek/seatutor/internal/store"
)

// Award represents a single badge earned.
type Award struct {
	Tier        Tier
	Threshold   int
	StudentID   string
	StudentName string
	Strand      string // empty for a global badge
	SessionID   string
	AwardedAt   time.Time
}

// Service records badge awards, suppressing ones the student already holds.
type Service struct {
	repo store.BadgeRepo

	// SessionBadges accumulates badges awarded during the current session,
	// including ones suppressed as duplicates in the ledger.
	SessionBadges []Award

	// Recorded counts the awards this session that wrote a new ledger row.
	Recorded int
}

// NewService creates a badge service. A nil repo keeps awards in memory only.
func NewService(repo store.BadgeRepo) *Service {
	return &Service{repo: repo}
}

// Award records a. It reports whether a new ledger row was written. A
// failed existence check skips the write so a flaky store cannot produce a
// duplicate; the error is returned for the caller to log.
func (s *Service) Award(ctx context.Context, a Award) (bool, error) {
	if a.AwardedAt.IsZero() {
		a.AwardedAt = time.Now()
	}
	s.SessionBadges = append(s.SessionBadges, a)

	if s.repo == nil {
		return false, nil
	}

	exists, err := s.repo.BadgeExists(ctx, a.StudentID, a.Strand, string(a.Tier))
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	err = s.repo.AppendBadge(ctx, store.BadgeRecord{
		AwardedAt:   a.AwardedAt,
		StudentID:   a.StudentID,
		StudentName: a.StudentName,
		Strand:      a.Strand,
		Tier:        string(a.Tier),
		Streak:      a.Threshold,
		SessionID:   a.SessionID,
	})
	if err != nil {
		return false, err
	}
	s.Recorded++
	return true, nil
}

// Highest returns the best tier earned this session, or false.
func (s *Service) Highest() (Tier, bool) {
	best := -1
	for _, a := range s.SessionBadges {
		if th := a.Tier.Threshold(); th > best {
			best = th
		}
	}
	if best < 0 {
		return "", false
	}
	return TierForStreak(best)
}

// ResetSession clears the session badge accumulator. Called at session start.
func (s *Service) ResetSession() {
	s.SessionBadges = nil
	s.Recorded = 0
}
