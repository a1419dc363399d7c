package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// badgeRepo implements BadgeRepo over the badges table.
type badgeRepo struct {
	s *Store
}

func (r *badgeRepo) AppendBadge(ctx context.Context, b BadgeRecord) error {
	query, args := r.s.builder().Insert(tableBadges).
		Columns("awarded_at", "student_id", "student_name", "strand", "tier", "streak", "session_id").
		Values(b.AwardedAt.UTC(), b.StudentID, b.StudentName, b.Strand, b.Tier, b.Streak, b.SessionID).
		Query()
	if _, err := r.s.db.ExecContext(ctx, query, args...); err != nil {
		return persistErr("append badge", err)
	}
	return nil
}

func (r *badgeRepo) BadgeExists(ctx context.Context, studentID, strand, tier string) (bool, error) {
	query, args := r.s.builder().
		Select(entsql.Count("*")).
		From(r.s.builder().Table(tableBadges)).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("strand", strand),
			entsql.EQ("tier", tier),
		)).
		Query()

	var n int
	if err := r.s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, persistErr("check badge", err)
	}
	return n > 0, nil
}

func (r *badgeRepo) QueryBadges(ctx context.Context, studentID string) ([]BadgeRecord, error) {
	sel := r.s.builder().
		Select("id", "awarded_at", "student_id", "student_name", "strand", "tier", "streak", "session_id").
		From(r.s.builder().Table(tableBadges)).
		OrderBy(entsql.Desc("awarded_at"), entsql.Desc("id"))
	if studentID != "" {
		sel.Where(entsql.EQ("student_id", studentID))
	}

	query, args := sel.Query()
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("query badges", err)
	}
	defer rows.Close()

	var out []BadgeRecord
	for rows.Next() {
		var b BadgeRecord
		if err := rows.Scan(&b.ID, &b.AwardedAt, &b.StudentID, &b.StudentName,
			&b.Strand, &b.Tier, &b.Streak, &b.SessionID); err != nil {
			return nil, persistErr("query badges", fmt.Errorf("scan: %w", err))
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("query badges", err)
	}
	return out, nil
}
