package utils

import (
	"context"

	"pizzeria-backend/internal/data/entity"

	"github.com/google/uuid"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"
)

// SetPrincipalContext stores the authenticated caller.
func SetPrincipalContext(ctx context.Context, p entity.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

func GetPrincipalFromContext(ctx context.Context) (entity.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(entity.Principal)
	return p, ok && p != nil
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	p, ok := GetPrincipalFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return p.Subject(), true
}
