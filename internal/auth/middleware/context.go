package auth

import "context"

type subjectKey struct{}

// WithSubject records the authenticated user id for the request. Handlers
// read it back to scope student endpoints to the caller's own rows.
func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, subjectKey{}, sub)
}

// SubjectFromContext returns the authenticated user id, or "" outside the
// JWT middleware.
func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}
