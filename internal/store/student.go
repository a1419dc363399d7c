package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var studentSelectColumns = []string{
	"student_id", "name", "first_seen", "last_seen",
	"total_questions", "correct_answers", "best_streak", "sessions", "badges",
}

// studentRepo implements StudentRepo over the students table.
type studentRepo struct {
	s *Store
}

func (r *studentRepo) FindStudent(ctx context.Context, id string) (*StudentSummary, error) {
	query, args := r.s.builder().
		Select(studentSelectColumns...).
		From(r.s.builder().Table(tableStudents)).
		Where(entsql.EQ("student_id", id)).
		Limit(1).
		Query()
	return r.findOne(ctx, "find student", query, args)
}

func (r *studentRepo) FindStudentByName(ctx context.Context, name string) (*StudentSummary, error) {
	query, args := r.s.builder().
		Select(studentSelectColumns...).
		From(r.s.builder().Table(tableStudents)).
		Where(entsql.EqualFold("name", name)).
		OrderBy(entsql.Desc("last_seen")).
		Limit(1).
		Query()
	return r.findOne(ctx, "find student by name", query, args)
}

func (r *studentRepo) findOne(ctx context.Context, op, query string, args []any) (*StudentSummary, error) {
	var st StudentSummary
	err := r.s.db.QueryRowContext(ctx, query, args...).Scan(studentScanDest(&st)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr(op, err)
	}
	return &st, nil
}

func (r *studentRepo) CreateStudent(ctx context.Context, st StudentSummary) error {
	query, args := r.s.builder().Insert(tableStudents).
		Columns(studentSelectColumns...).
		Values(st.StudentID, st.Name, st.FirstSeen.UTC(), st.LastSeen.UTC(),
			st.TotalQuestions, st.CorrectAnswers, st.BestStreak, st.Sessions, st.Badges).
		OnConflict(
			entsql.ConflictColumns("student_id"),
			entsql.ResolveWithIgnore(),
		).
		Query()
	if _, err := r.s.db.ExecContext(ctx, query, args...); err != nil {
		return persistErr("create student", err)
	}
	return nil
}

func (r *studentRepo) UpdateStudent(ctx context.Context, st StudentSummary) error {
	query, args := r.s.builder().Update(tableStudents).
		Set("name", st.Name).
		Set("last_seen", st.LastSeen.UTC()).
		Set("total_questions", st.TotalQuestions).
		Set("correct_answers", st.CorrectAnswers).
		Set("best_streak", st.BestStreak).
		Set("sessions", st.Sessions).
		Set("badges", st.Badges).
		Where(entsql.EQ("student_id", st.StudentID)).
		Query()

	res, err := r.s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return persistErr("update student", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return persistErr("update student", fmt.Errorf("student %q not found", st.StudentID))
	}
	return nil
}

func (r *studentRepo) ListStudents(ctx context.Context) ([]StudentSummary, error) {
	query, args := r.s.builder().
		Select(studentSelectColumns...).
		From(r.s.builder().Table(tableStudents)).
		OrderBy(entsql.Desc("total_questions"), entsql.Asc("name")).
		Query()

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("list students", err)
	}
	defer rows.Close()

	var out []StudentSummary
	for rows.Next() {
		var st StudentSummary
		if err := rows.Scan(studentScanDest(&st)...); err != nil {
			return nil, persistErr("list students", fmt.Errorf("scan: %w", err))
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list students", err)
	}
	return out, nil
}

func studentScanDest(st *StudentSummary) []any {
	return []any{
		&st.StudentID, &st.Name, &st.FirstSeen, &st.LastSeen,
		&st.TotalQuestions, &st.CorrectAnswers, &st.BestStreak, &st.Sessions, &st.Badges,
	}
}
