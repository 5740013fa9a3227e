package rbac

import "context"

type ctxKey int

const (
	subjectKey ctxKey = iota
	roleKey
)

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, subjectKey, sub)
}

func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey).(string)
	return s, ok
}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

func RoleFromContext(ctx context.Context) (string, bool) {
	r, ok := ctx.Value(roleKey).(string)
	return r, ok
}
