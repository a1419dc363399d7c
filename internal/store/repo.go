package store

import (
	"context"
	"time"
)

// DayLayout is the calendar-day key used by the activity log and daily_usage.
const DayLayout = "2006-01-02"

// DayKey formats t as a calendar day in t's own location.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// ActivityEntry is one classified tutoring turn.
type ActivityEntry struct {
	ID             int64
	Timestamp      time.Time // local time of the turn; Day is derived from it
	StudentID      string
	StudentName    string
	QuestionType   string
	Strand         string
	Correct        bool
	ElapsedSeconds float64
}

// ActivityFilter narrows activity queries. Zero values mean "no filter".
type ActivityFilter struct {
	StudentID string
	Strand    string
	From      time.Time // timestamp >= From
	To        time.Time // timestamp < To
	Limit     int       // max results, newest first (0 = unlimited)
}

// ActivityRepo is the append-only activity ledger.
type ActivityRepo interface {
	// AppendActivity writes all entries in one batch.
	AppendActivity(ctx context.Context, entries ...ActivityEntry) error

	// QueryActivity returns entries matching f, newest first.
	QueryActivity(ctx context.Context, f ActivityFilter) ([]ActivityEntry, error)
}

// BadgeRecord is one awarded streak badge. An empty Strand means the badge
// was earned outside any single strand (global scope).
type BadgeRecord struct {
	ID          int64
	AwardedAt   time.Time
	StudentID   string
	StudentName string
	Strand      string
	Tier        string
	Streak      int
	SessionID   string
}

// BadgeRepo is the append-only badge ledger.
type BadgeRepo interface {
	AppendBadge(ctx context.Context, b BadgeRecord) error

	// BadgeExists reports whether studentID already holds tier in strand.
	BadgeExists(ctx context.Context, studentID, strand, tier string) (bool, error)

	// QueryBadges lists badges, newest first. An empty studentID lists all.
	QueryBadges(ctx context.Context, studentID string) ([]BadgeRecord, error)
}

// StudentSummary is the one-row-per-student rollup.
type StudentSummary struct {
	StudentID      string
	Name           string
	FirstSeen      time.Time
	LastSeen       time.Time
	TotalQuestions int
	CorrectAnswers int
	BestStreak     int
	Sessions       int
	Badges         int
}

// StudentRepo manages the per-student summary rows.
type StudentRepo interface {
	// FindStudent returns the summary for id, or nil if none exists.
	FindStudent(ctx context.Context, id string) (*StudentSummary, error)

	// FindStudentByName returns the most recently seen student with the
	// given name (case-insensitive), or nil.
	FindStudentByName(ctx context.Context, name string) (*StudentSummary, error)

	// CreateStudent appends s unless a row with the same StudentID exists.
	CreateStudent(ctx context.Context, s StudentSummary) error

	// UpdateStudent overwrites the mutable fields of an existing row.
	UpdateStudent(ctx context.Context, s StudentSummary) error

	ListStudents(ctx context.Context) ([]StudentSummary, error)
}

// UsageRow is one daily aggregate.
type UsageRow struct {
	Day       string
	StudentID string
	Turns     int
}

// UsageRepo maintains per-day turn counts, per student and class-wide.
type UsageRepo interface {
	// IncrementUsage adds n to both the student's and the global count for day.
	IncrementUsage(ctx context.Context, day, studentID string, n int) error

	// UsageCount returns the student's count for day (0 when absent).
	UsageCount(ctx context.Context, day, studentID string) (int, error)

	// GlobalUsage returns the class-wide count for day.
	GlobalUsage(ctx context.Context, day string) (int, error)

	// GlobalUsageSince returns class-wide rows with day >= from, oldest first.
	GlobalUsageSince(ctx context.Context, from string) ([]UsageRow, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestRecord is a stored LLM request.
type LLMRequestRecord struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM requests under one key (purpose or model).
type LLMUsage struct {
	Key          string
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs float64
}

// LLMRepo records and summarises LLM API calls.
type LLMRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)

	// QueryLLMRequests returns requests newest first. An empty purpose
	// matches all.
	QueryLLMRequests(ctx context.Context, purpose string, limit int) ([]LLMRequestRecord, error)
	// GetLLMRequest returns nil, nil when id does not exist.
	GetLLMRequest(ctx context.Context, id int) (*LLMRequestRecord, error)
}
