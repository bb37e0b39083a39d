package storage_test

import (
	"context"

	"github.com/vovakirdan/math-arcade/internal/auth"
)

func authCtx(user string) context.Context {
	return auth.WithUser(context.Background(), user)
}
