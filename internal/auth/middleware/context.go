package auth

import "context"

type ctxKey string

const (
	ctxKeySub   ctxKey = "sub"
	ctxKeyGuest ctxKey = "guest"
)

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

func SubjectFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeySub); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func WithGuest(ctx context.Context, guest bool) context.Context {
	return context.WithValue(ctx, ctxKeyGuest, guest)
}

func GuestFromContext(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyGuest).(bool)
	return v
}
