package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// llmRepo implements LLMRepo over the llm_requests table.
type llmRepo struct {
	s *Store
}

func (r *llmRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	query, args := r.s.builder().Insert(tableLLM).
		Columns("timestamp", "provider", "model", "purpose", "input_tokens", "output_tokens",
			"latency_ms", "success", "error_message", "request_body", "response_body").
		Values(time.Now().UTC(), data.Provider, data.Model, data.Purpose, data.InputTokens,
			data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage,
			data.RequestBody, data.ResponseBody).
		Query()
	if _, err := r.s.db.ExecContext(ctx, query, args...); err != nil {
		return persistErr("append llm request", err)
	}
	return nil
}

func (r *llmRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return r.usageBy(ctx, "purpose")
}

func (r *llmRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return r.usageBy(ctx, "model")
}

func (r *llmRepo) usageBy(ctx context.Context, column string) ([]LLMUsage, error) {
	query, args := r.s.builder().
		Select(
			column,
			entsql.Count("*"),
			"SUM(CASE WHEN success THEN 0 ELSE 1 END)",
			entsql.Sum("input_tokens"),
			entsql.Sum("output_tokens"),
			entsql.Avg("latency_ms"),
		).
		From(r.s.builder().Table(tableLLM)).
		GroupBy(column).
		OrderBy(entsql.Asc(column)).
		Query()

	op := "llm usage by " + column
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr(op, err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var (
			u        LLMUsage
			in, outT sql.NullInt64
			avg      sql.NullFloat64
		)
		if err := rows.Scan(&u.Key, &u.Requests, &u.Failures, &in, &outT, &avg); err != nil {
			return nil, persistErr(op, fmt.Errorf("scan: %w", err))
		}
		u.InputTokens = int(in.Int64)
		u.OutputTokens = int(outT.Int64)
		u.AvgLatencyMs = avg.Float64
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr(op, err)
	}
	return out, nil
}

var llmRecordColumns = []string{"id", "timestamp", "provider", "model", "purpose", "input_tokens",
	"output_tokens", "latency_ms", "success", "error_message", "request_body", "response_body"}

func llmScanDest(rec *LLMRequestRecord) []any {
	return []any{&rec.ID, &rec.Timestamp, &rec.Provider, &rec.Model, &rec.Purpose, &rec.InputTokens,
		&rec.OutputTokens, &rec.LatencyMs, &rec.Success, &rec.ErrorMessage, &rec.RequestBody, &rec.ResponseBody}
}

func (r *llmRepo) QueryLLMRequests(ctx context.Context, purpose string, limit int) ([]LLMRequestRecord, error) {
	sel := r.s.builder().
		Select(llmRecordColumns...).
		From(r.s.builder().Table(tableLLM))
	if purpose != "" {
		sel.Where(entsql.EQ("purpose", purpose))
	}
	sel.OrderBy(entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("query llm requests", err)
	}
	defer rows.Close()

	var out []LLMRequestRecord
	for rows.Next() {
		var rec LLMRequestRecord
		if err := rows.Scan(llmScanDest(&rec)...); err != nil {
			return nil, persistErr("query llm requests", fmt.Errorf("scan: %w", err))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("query llm requests", err)
	}
	return out, nil
}

func (r *llmRepo) GetLLMRequest(ctx context.Context, id int) (*LLMRequestRecord, error) {
	query, args := r.s.builder().
		Select(llmRecordColumns...).
		From(r.s.builder().Table(tableLLM)).
		Where(entsql.EQ("id", id)).
		Query()

	var rec LLMRequestRecord
	err := r.s.db.QueryRowContext(ctx, query, args...).Scan(llmScanDest(&rec)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("get llm request", err)
	}
	return &rec, nil
}
