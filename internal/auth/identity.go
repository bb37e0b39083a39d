// Package auth resolves who is playing. Identities travel in the request
// context; HTTP callers prove theirs with an HS256 bearer token and SSH
// callers with their SSH user name.
package auth

import "context"

// Identity resolves the current user from a context.
type Identity interface {
	UserID(ctx context.Context) (string, bool)
}

type userKey struct{}

// WithUser returns a context carrying userID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFromContext returns the user stored by WithUser. Empty IDs count as absent.
func UserFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey{}).(string)
	return id, ok && id != ""
}

// ContextIdentity reads the user stored by WithUser.
type ContextIdentity struct{}

func (ContextIdentity) UserID(ctx context.Context) (string, bool) {
	return UserFromContext(ctx)
}
