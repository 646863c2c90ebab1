package iam

import "context"

// contextKey is an unexported type for keys defined in this package.
type contextKey string

const subjectContextKey contextKey = "iam.subject"

// WithSubject returns a context carrying the resolved subject username,
// making it available to downstream report and logging code.
func WithSubject(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, subjectContextKey, username)
}

// SubjectFromContext extracts the subject username from the context.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectContextKey).(string)
	return subject, ok && subject != ""
}
