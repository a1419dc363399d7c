package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// usageRepo implements UsageRepo over the daily_usage table. The global row
// (student_id "*") is bumped in the same transaction as the student's row so
// the two can never drift apart.
type usageRepo struct {
	s *Store
}

func (r *usageRepo) IncrementUsage(ctx context.Context, day, studentID string, n int) error {
	if n <= 0 {
		return nil
	}

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr("increment usage", fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	for _, key := range []string{studentID, GlobalUsageKey} {
		query, args := r.s.builder().Insert(tableUsage).
			Columns("day", "student_id", "turns").
			Values(day, key, n).
			OnConflict(
				entsql.ConflictColumns("day", "student_id"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					u.Add("turns", n)
				}),
			).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return persistErr("increment usage", fmt.Errorf("upsert %q: %w", key, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return persistErr("increment usage", fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (r *usageRepo) UsageCount(ctx context.Context, day, studentID string) (int, error) {
	query, args := r.s.builder().
		Select("turns").
		From(r.s.builder().Table(tableUsage)).
		Where(entsql.And(
			entsql.EQ("day", day),
			entsql.EQ("student_id", studentID),
		)).
		Query()

	var turns int
	err := r.s.db.QueryRowContext(ctx, query, args...).Scan(&turns)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, persistErr("usage count", err)
	}
	return turns, nil
}

func (r *usageRepo) GlobalUsage(ctx context.Context, day string) (int, error) {
	return r.UsageCount(ctx, day, GlobalUsageKey)
}

func (r *usageRepo) GlobalUsageSince(ctx context.Context, from string) ([]UsageRow, error) {
	query, args := r.s.builder().
		Select("day", "student_id", "turns").
		From(r.s.builder().Table(tableUsage)).
		Where(entsql.And(
			entsql.EQ("student_id", GlobalUsageKey),
			entsql.GTE("day", from),
		)).
		OrderBy(entsql.Asc("day")).
		Query()

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("usage since", err)
	}
	defer rows.Close()

	var out []UsageRow
	for rows.Next() {
		var u UsageRow
		if err := rows.Scan(&u.Day, &u.StudentID, &u.Turns); err != nil {
			return nil, persistErr("usage since", fmt.Errorf("scan: %w", err))
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("usage since", err)
	}
	return out, nil
}
