package session

import "context"

type contextKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}

func HouseholdCode(ctx context.Context) string {
	s, _ := FromContext(ctx)
	return s.HouseholdCode
}

func IdentityID(ctx context.Context) string {
	s, _ := FromContext(ctx)
	return s.IdentityID
}
