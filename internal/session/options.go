package session

import (
	"log/slog"
	"time"

	"github.com/abhisek/seatutor/internal/tracker"
)

// Limits caps graded turns per calendar day. Zero disables a cap.
type Limits struct {
	PerStudent int
	Global     int
}

// Options tunes session behavior. Zero values fall back to defaults.
type Options struct {
	Limits   Limits
	Location *time.Location

	// FlushBatch is the pending-log length that triggers a flush.
	FlushBatch int

	// MaxPending caps the entries kept after failed flushes; the oldest are
	// dropped first.
	MaxPending int

	FlushAttempts uint
	FlushDelay    time.Duration

	// TTL expires sessions idle for longer than this. Zero never expires.
	TTL time.Duration

	Logger *slog.Logger
	Now    func() time.Time
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Limits:        Limits{PerStudent: 50, Global: 1000},
		Location:      time.UTC,
		FlushBatch:    tracker.FlushBatchSize,
		MaxPending:    100,
		FlushAttempts: 3,
		FlushDelay:    200 * time.Millisecond,
		TTL:           2 * time.Hour,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Location == nil {
		o.Location = d.Location
	}
	if o.FlushBatch <= 0 {
		o.FlushBatch = d.FlushBatch
	}
	if o.MaxPending <= 0 {
		o.MaxPending = d.MaxPending
	}
	if o.FlushAttempts == 0 {
		o.FlushAttempts = d.FlushAttempts
	}
	if o.FlushDelay <= 0 {
		o.FlushDelay = d.FlushDelay
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
