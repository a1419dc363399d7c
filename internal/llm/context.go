package llm

import "context"

type ctxKey int

const (
	purposeKey ctxKey = iota
	sessionKey
)

// WithPurpose tags the requests made under ctx, e.g. "tutor-reply" or
// "class-insight". The tag ends up in llm_requests.purpose.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom returns the tag set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// WithSession ties the requests made under ctx to a practice session so
// their log lines can be correlated with the session's own.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey, sessionID)
}

// SessionFrom returns the id set by WithSession, or "".
func SessionFrom(ctx context.Context) string {
	v, _ := ctx.Value(sessionKey).(string)
	return v
}
