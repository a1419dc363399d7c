package store

import (
	"math"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names shared by the repositories.
const (
	tableActivity = "activity_log"
	tableBadges   = "badges"
	tableStudents = "students"
	tableUsage    = "daily_usage"
	tableLLM      = "llm_requests"

	// GlobalUsageKey is the student_id under which the class-wide daily
	// aggregate is kept in daily_usage.
	GlobalUsageKey = "*"
)

const textSize = math.MaxInt32

var (
	// activityColumns holds the columns for the "activity_log" table.
	activityColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "day", Type: field.TypeString, Size: 10},
		{Name: "student_id", Type: field.TypeString, Size: 64},
		{Name: "student_name", Type: field.TypeString},
		{Name: "question_type", Type: field.TypeString, Size: 64},
		{Name: "strand", Type: field.TypeString, Size: 64},
		{Name: "correct", Type: field.TypeBool},
		{Name: "elapsed_seconds", Type: field.TypeFloat64},
	}
	activityTable = &schema.Table{
		Name:       tableActivity,
		Columns:    activityColumns,
		PrimaryKey: []*schema.Column{activityColumns[0]},
		Indexes: []*schema.Index{
			{Name: "activity_student_day", Columns: []*schema.Column{activityColumns[3], activityColumns[2]}},
			{Name: "activity_timestamp", Columns: []*schema.Column{activityColumns[1]}},
		},
	}

	// badgeColumns holds the columns for the "badges" table.
	badgeColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "awarded_at", Type: field.TypeTime},
		{Name: "student_id", Type: field.TypeString, Size: 64},
		{Name: "student_name", Type: field.TypeString},
		{Name: "strand", Type: field.TypeString, Size: 64, Default: ""},
		{Name: "tier", Type: field.TypeString, Size: 16},
		{Name: "streak", Type: field.TypeInt},
		{Name: "session_id", Type: field.TypeString, Size: 64, Default: ""},
	}
	badgeTable = &schema.Table{
		Name:       tableBadges,
		Columns:    badgeColumns,
		PrimaryKey: []*schema.Column{badgeColumns[0]},
		Indexes: []*schema.Index{
			{Name: "badge_student_strand_tier", Columns: []*schema.Column{badgeColumns[2], badgeColumns[4], badgeColumns[5]}},
		},
	}

	// studentColumns holds the columns for the "students" summary table.
	studentColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "student_id", Type: field.TypeString, Size: 64, Unique: true},
		{Name: "name", Type: field.TypeString},
		{Name: "first_seen", Type: field.TypeTime},
		{Name: "last_seen", Type: field.TypeTime},
		{Name: "total_questions", Type: field.TypeInt, Default: 0},
		{Name: "correct_answers", Type: field.TypeInt, Default: 0},
		{Name: "best_streak", Type: field.TypeInt, Default: 0},
		{Name: "sessions", Type: field.TypeInt, Default: 0},
		{Name: "badges", Type: field.TypeInt, Default: 0},
	}
	studentTable = &schema.Table{
		Name:       tableStudents,
		Columns:    studentColumns,
		PrimaryKey: []*schema.Column{studentColumns[0]},
		Indexes: []*schema.Index{
			{Name: "students_by_name", Columns: []*schema.Column{studentColumns[2]}},
		},
	}

	// usageColumns holds the columns for the "daily_usage" aggregate table.
	usageColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "day", Type: field.TypeString, Size: 10},
		{Name: "student_id", Type: field.TypeString, Size: 64},
		{Name: "turns", Type: field.TypeInt, Default: 0},
	}
	usageTable = &schema.Table{
		Name:       tableUsage,
		Columns:    usageColumns,
		PrimaryKey: []*schema.Column{usageColumns[0]},
		Indexes: []*schema.Index{
			{Name: "usage_day_student", Unique: true, Columns: []*schema.Column{usageColumns[1], usageColumns[2]}},
		},
	}

	// llmColumns holds the columns for the "llm_requests" table.
	llmColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString, Size: 32},
		{Name: "model", Type: field.TypeString, Size: 128},
		{Name: "purpose", Type: field.TypeString, Size: 64},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: textSize},
		{Name: "request_body", Type: field.TypeString, Size: textSize},
		{Name: "response_body", Type: field.TypeString, Size: textSize},
	}
	llmTable = &schema.Table{
		Name:       tableLLM,
		Columns:    llmColumns,
		PrimaryKey: []*schema.Column{llmColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llm_purpose", Columns: []*schema.Column{llmColumns[4]}},
		},
	}

	// Tables holds every table managed by the store, in migration order.
	Tables = []*schema.Table{
		activityTable,
		badgeTable,
		studentTable,
		usageTable,
		llmTable,
	}
)
