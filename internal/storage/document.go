package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNoCredentials means the caller has no token for the document store.
// Uploads are best-effort, so callers treat it as a warning.
var ErrNoCredentials = errors.New("storage: no credentials for document store")

// DocumentStore accepts a named upload and returns an opaque reference.
type DocumentStore interface {
	Put(ctx context.Context, name string, r io.Reader) (string, error)
}

// DocumentReader is implemented by stores that can hand a document back.
type DocumentReader interface {
	Open(key string) (io.ReadCloser, error)
}

type ctxKey struct{}

// WithAccessToken attaches the uploader's OAuth access token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKey{}, token)
}

func AccessTokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}
