package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := OpenSQLite(context.Background(), fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil database handle")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is covered by TestOpenFileDB.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpenFileDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "seatutor.db")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}

	s, err := Open(context.Background(), Config{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want %q", mode, "wal")
	}

	// Re-opening runs the migration again against existing tables.
	s2, err := Open(context.Background(), Config{Path: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	s2.Close()
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "postgres"})
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Run("env override", func(t *testing.T) {
		want := filepath.Join(dir, "custom", "x.db")
		t.Setenv("SEATUTOR_DB", want)
		got, err := DefaultDBPath()
		if err != nil {
			t.Fatalf("DefaultDBPath: %v", err)
		}
		if got != want {
			t.Errorf("DefaultDBPath() = %q, want %q", got, want)
		}
	})

	t.Run("xdg data home", func(t *testing.T) {
		t.Setenv("SEATUTOR_DB", "")
		t.Setenv("XDG_DATA_HOME", dir)
		got, err := DefaultDBPath()
		if err != nil {
			t.Fatalf("DefaultDBPath: %v", err)
		}
		want := filepath.Join(dir, "seatutor", "seatutor.db")
		if got != want {
			t.Errorf("DefaultDBPath() = %q, want %q", got, want)
		}
	})
}

func TestActivityAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.ActivityRepo()
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	entries := []ActivityEntry{
		{Timestamp: base, StudentID: "s1", StudentName: "Asha", QuestionType: "Question", Strand: "Number", Correct: true, ElapsedSeconds: 12.5},
		{Timestamp: base.Add(time.Minute), StudentID: "s1", StudentName: "Asha", QuestionType: "Question", Strand: "Geometry", Correct: false, ElapsedSeconds: 30},
		{Timestamp: base.Add(2 * time.Minute), StudentID: "s2", StudentName: "Ravi", QuestionType: "Question", Strand: "Number", Correct: true, ElapsedSeconds: 8},
	}
	require.NoError(t, repo.AppendActivity(ctx, entries...))

	all, err := repo.QueryActivity(ctx, ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "s2", all[0].StudentID, "newest first")
	assert.True(t, all[0].Timestamp.Equal(base.Add(2*time.Minute)))

	tests := []struct {
		name   string
		filter ActivityFilter
		want   int
	}{
		{"by student", ActivityFilter{StudentID: "s1"}, 2},
		{"by strand", ActivityFilter{Strand: "Number"}, 2},
		{"student and strand", ActivityFilter{StudentID: "s1", Strand: "Number"}, 1},
		{"from", ActivityFilter{From: base.Add(time.Minute)}, 2},
		{"to exclusive", ActivityFilter{To: base.Add(time.Minute)}, 1},
		{"limit", ActivityFilter{Limit: 1}, 1},
		{"no match", ActivityFilter{StudentID: "nobody"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.QueryActivity(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestActivityAppendEmpty(t *testing.T) {
	s := openTestStore(t)
	if err := s.ActivityRepo().AppendActivity(context.Background()); err != nil {
		t.Errorf("AppendActivity() with no entries = %v, want nil", err)
	}
}

func TestBadgeExistsAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.BadgeRepo()
	ctx := context.Background()

	ok, err := repo.BadgeExists(ctx, "s1", "Number", "bronze")
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.AppendBadge(ctx, BadgeRecord{
		AwardedAt: now, StudentID: "s1", StudentName: "Asha", Strand: "Number", Tier: "bronze", Streak: 5, SessionID: "sess",
	}))
	require.NoError(t, repo.AppendBadge(ctx, BadgeRecord{
		AwardedAt: now.Add(time.Second), StudentID: "s2", StudentName: "Ravi", Tier: "silver", Streak: 10,
	}))

	ok, err = repo.BadgeExists(ctx, "s1", "Number", "bronze")
	require.NoError(t, err)
	assert.True(t, ok)

	// Scope is part of the key.
	ok, err = repo.BadgeExists(ctx, "s1", "", "bronze")
	require.NoError(t, err)
	assert.False(t, ok)

	mine, err := repo.QueryBadges(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 5, mine[0].Streak)
	assert.Equal(t, "sess", mine[0].SessionID)

	all, err := repo.QueryBadges(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "silver", all[0].Tier)
}

func TestStudentLifecycle(t *testing.T) {
	s := openTestStore(t)
	repo := s.StudentRepo()
	ctx := context.Background()

	got, err := repo.FindStudent(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	now := time.Now().UTC().Truncate(time.Second)
	st := StudentSummary{StudentID: "s1", Name: "Asha Persad", FirstSeen: now, LastSeen: now, Sessions: 1}
	require.NoError(t, repo.CreateStudent(ctx, st))

	// Append-if-absent: a second create does not overwrite.
	dup := st
	dup.Name = "Someone Else"
	require.NoError(t, repo.CreateStudent(ctx, dup))

	got, err = repo.FindStudent(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Asha Persad", got.Name)

	byName, err := repo.FindStudentByName(ctx, "asha persad")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, "s1", byName.StudentID)

	got.TotalQuestions = 12
	got.CorrectAnswers = 9
	got.BestStreak = 6
	got.Badges = 1
	got.LastSeen = now.Add(time.Hour)
	require.NoError(t, repo.UpdateStudent(ctx, *got))

	again, err := repo.FindStudent(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 12, again.TotalQuestions)
	assert.Equal(t, 9, again.CorrectAnswers)
	assert.Equal(t, 6, again.BestStreak)
	assert.True(t, again.LastSeen.Equal(now.Add(time.Hour)))

	err = repo.UpdateStudent(ctx, StudentSummary{StudentID: "missing"})
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "update student", perr.Op)

	require.NoError(t, repo.CreateStudent(ctx, StudentSummary{StudentID: "s2", Name: "Ravi", FirstSeen: now, LastSeen: now}))
	list, err := repo.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "s1", list[0].StudentID, "sorted by questions")
}

func TestUsageIncrement(t *testing.T) {
	s := openTestStore(t)
	repo := s.UsageRepo()
	ctx := context.Background()

	n, err := repo.UsageCount(ctx, "2026-03-10", "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, repo.IncrementUsage(ctx, "2026-03-10", "s1", 1))
	require.NoError(t, repo.IncrementUsage(ctx, "2026-03-10", "s1", 2))
	require.NoError(t, repo.IncrementUsage(ctx, "2026-03-10", "s2", 1))
	require.NoError(t, repo.IncrementUsage(ctx, "2026-03-11", "s1", 4))
	require.NoError(t, repo.IncrementUsage(ctx, "2026-03-11", "s1", 0))

	n, err = repo.UsageCount(ctx, "2026-03-10", "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	g, err := repo.GlobalUsage(ctx, "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, 4, g)

	rows, err := repo.GlobalUsageSince(ctx, "2026-03-10")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, UsageRow{Day: "2026-03-10", StudentID: GlobalUsageKey, Turns: 4}, rows[0])
	assert.Equal(t, 4, rows[1].Turns)
}

func TestLLMUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	repo := s.LLMRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "tutor-reply", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "tutor-reply", InputTokens: 120, OutputTokens: 70, LatencyMs: 400, Success: true},
		{Provider: "anthropic", Model: "claude-sonnet-4-5", Purpose: "report-insight", LatencyMs: 50, ErrorMessage: "rate limited"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "report-insight", byPurpose[0].Key)
	assert.Equal(t, 1, byPurpose[0].Failures)
	assert.Equal(t, "tutor-reply", byPurpose[1].Key)
	assert.Equal(t, 2, byPurpose[1].Requests)
	assert.Equal(t, 220, byPurpose[1].InputTokens)
	assert.Equal(t, 120, byPurpose[1].OutputTokens)
	assert.InDelta(t, 300.0, byPurpose[1].AvgLatencyMs, 0.01)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	assert.Len(t, byModel, 2)
}

func TestLLMRequestQueries(t *testing.T) {
	s := openTestStore(t)
	repo := s.LLMRepo()
	ctx := context.Background()

	for _, purpose := range []string{"tutor-reply", "report-insight", "tutor-reply"} {
		require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider: "gemini", Model: "gemini-2.5-flash", Purpose: purpose, Success: true,
			RequestBody: `{"q":"` + purpose + `"}`,
		}))
	}

	all, err := repo.QueryLLMRequests(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[0].ID, "newest first")

	replies, err := repo.QueryLLMRequests(ctx, "tutor-reply", 1)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, 3, replies[0].ID)

	rec, err := repo.GetLLMRequest(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "report-insight", rec.Purpose)
	assert.Equal(t, `{"q":"report-insight"}`, rec.RequestBody)
	assert.False(t, rec.Timestamp.IsZero())

	missing, err := repo.GetLLMRequest(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPersistenceErrorFromDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db, dialect.SQLite)
	ctx := context.Background()
	boom := errors.New("database is locked")

	mock.ExpectExec("INSERT INTO `activity_log`").WillReturnError(boom)
	err = s.ActivityRepo().AppendActivity(ctx, ActivityEntry{Timestamp: time.Now(), StudentID: "s1"})

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "append activity", perr.Op)
	assert.ErrorIs(t, err, boom)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `daily_usage`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `daily_usage`").WillReturnError(boom)
	mock.ExpectRollback()
	err = s.UsageRepo().IncrementUsage(ctx, "2026-03-10", "s1", 1)
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "increment usage", perr.Op)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM `badges`").WillReturnError(boom)
	_, err = s.BadgeRepo().BadgeExists(ctx, "s1", "", "bronze")
	require.ErrorAs(t, err, &perr)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersistenceErrorMessage(t *testing.T) {
	err := &PersistenceError{Op: "append badge", Err: errors.New("disk full")}
	if got, want := err.Error(), "persist append badge: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if persistErr("x", nil) != nil {
		t.Error("persistErr(nil) should be nil")
	}
}
