package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// activityRepo implements ActivityRepo over the activity_log table.
type activityRepo struct {
	s *Store
}

func (r *activityRepo) AppendActivity(ctx context.Context, entries ...ActivityEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ins := r.s.builder().Insert(tableActivity).
		Columns("timestamp", "day", "student_id", "student_name", "question_type", "strand", "correct", "elapsed_seconds")
	for _, e := range entries {
		ins.Values(e.Timestamp.UTC(), DayKey(e.Timestamp), e.StudentID, e.StudentName,
			e.QuestionType, e.Strand, e.Correct, e.ElapsedSeconds)
	}

	query, args := ins.Query()
	if _, err := r.s.db.ExecContext(ctx, query, args...); err != nil {
		return persistErr("append activity", fmt.Errorf("insert %d rows: %w", len(entries), err))
	}
	return nil
}

func (r *activityRepo) QueryActivity(ctx context.Context, f ActivityFilter) ([]ActivityEntry, error) {
	sel := r.s.builder().
		Select("id", "timestamp", "student_id", "student_name", "question_type", "strand", "correct", "elapsed_seconds").
		From(r.s.builder().Table(tableActivity))

	var preds []*entsql.Predicate
	if f.StudentID != "" {
		preds = append(preds, entsql.EQ("student_id", f.StudentID))
	}
	if f.Strand != "" {
		preds = append(preds, entsql.EQ("strand", f.Strand))
	}
	if !f.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", f.From.UTC()))
	}
	if !f.To.IsZero() {
		preds = append(preds, entsql.LT("timestamp", f.To.UTC()))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("timestamp"), entsql.Desc("id"))
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}

	query, args := sel.Query()
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("query activity", err)
	}
	defer rows.Close()

	var out []ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.StudentID, &e.StudentName,
			&e.QuestionType, &e.Strand, &e.Correct, &e.ElapsedSeconds); err != nil {
			return nil, persistErr("query activity", fmt.Errorf("scan: %w", err))
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("query activity", err)
	}
	return out, nil
}
