package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/seatutor/internal/tutor"
)

// heldReplier blocks every Generate call until release is closed.
type heldReplier struct {
	started chan struct{}
	release chan struct{}
}

func (h *heldReplier) Generate(ctx context.Context, _ tutor.Input) (*tutor.Reply, error) {
	close(h.started)
	select {
	case <-h.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &tutor.Reply{Text: "What is 45 ÷ 9?"}, nil
}

func newTestManager(clock *fakeClock, ttl time.Duration) *Manager {
	return NewManager(Deps{}, Options{
		TTL:    ttl,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    clock.Now,
	})
}

func TestManager_CreateGetDelete(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	m := newTestManager(clock, 0)

	s := m.Create()
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 1, m.Count())

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = m.Get("non-existent-session")
	assert.False(t, ok)

	m.Delete(s.ID)
	_, ok = m.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Count())
}

func TestManager_Expiry(t *testing.T) {
	tests := []struct {
		name      string
		ttl       time.Duration
		idle      time.Duration
		wantFound bool
	}{
		{name: "no expiry", ttl: 0, idle: 48 * time.Hour, wantFound: true},
		{name: "within ttl", ttl: time.Hour, idle: 59 * time.Minute, wantFound: true},
		{name: "past ttl", ttl: time.Hour, idle: 61 * time.Minute, wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
			m := newTestManager(clock, tt.ttl)
			s := m.Create()

			clock.Advance(tt.idle)
			_, found := m.Get(s.ID)
			assert.Equal(t, tt.wantFound, found)
		})
	}
}

func TestManager_GetKeepsSessionAlive(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	m := newTestManager(clock, time.Hour)
	s := m.Create()

	for i := 0; i < 3; i++ {
		clock.Advance(45 * time.Minute)
		_, ok := m.Get(s.ID)
		require.True(t, ok, "touch %d", i)
	}
}

func TestManager_Sweep(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	m := newTestManager(clock, time.Hour)
	ctx := context.Background()

	idle := m.Create()
	_, err := idle.Login(ctx, "Asha")
	require.NoError(t, err)

	closed := m.Create()
	_, err = closed.Login(ctx, "Kai")
	require.NoError(t, err)
	_, err = closed.Logout(ctx)
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	active := m.Create()

	clock.Advance(40 * time.Minute)
	removed := m.Sweep(ctx)

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, m.Count())
	assert.True(t, idle.Closed(), "idle session should be logged out")
	_, ok := m.Get(active.ID)
	assert.True(t, ok)
}

func TestManager_SweepDoesNotWaitOnBusySession(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	replier := &heldReplier{started: make(chan struct{}), release: make(chan struct{})}
	m := NewManager(Deps{Replier: replier}, Options{
		TTL:    time.Hour,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    clock.Now,
	})
	ctx := context.Background()

	busy := m.Create()
	_, err := busy.Login(ctx, "Asha")
	require.NoError(t, err)
	_, err = busy.SelectTopic("Number")
	require.NoError(t, err)
	other := m.Create()

	turnDone := make(chan error, 1)
	go func() {
		_, err := busy.Turn(ctx, "help me with fractions")
		turnDone <- err
	}()
	<-replier.started

	swept := make(chan int, 1)
	go func() { swept <- m.Sweep(ctx) }()

	select {
	case n := <-swept:
		assert.Equal(t, 0, n)
	case <-time.After(2 * time.Second):
		t.Fatal("Sweep waited on a session with a turn in flight")
	}

	got := make(chan bool, 1)
	go func() {
		_, ok := m.Get(other.ID)
		got <- ok
	}()
	select {
	case ok := <-got:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Get blocked while another session was mid-turn")
	}
	assert.False(t, busy.Closed())

	close(replier.release)
	require.NoError(t, <-turnDone)
}

func TestManager_Shutdown(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	m := newTestManager(clock, 0)
	ctx := context.Background()

	a := m.Create()
	_, err := a.Login(ctx, "Asha")
	require.NoError(t, err)
	b := m.Create()

	m.Shutdown(ctx)
	assert.Equal(t, 0, m.Count())
	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
}
