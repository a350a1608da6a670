package usecase

import (
	"context"
	"time"

	"pizzeria-backend/pkg/oauth"
	"pizzeria-backend/pkg/token"
)

// Mailer delivers account emails. Implementations must not log tokens.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
	SendPasswordResetEmail(ctx context.Context, to, token string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(password, hash string) bool
}

type TokenIssuer interface {
	Issue(sub token.Subject, purpose token.Purpose, ttl time.Duration) (string, time.Time, error)
	Verify(tokenStr string, allowed ...token.Purpose) (*token.Claims, error)
}

// OAuthProvider is an external identity provider (Google).
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.ExternalIdentity, error)
}

// Dependencies groups the collaborators shared by the services. OAuth is nil
// when federated sign-in is not configured.
type Dependencies struct {
	Tokens TokenIssuer
	Hasher PasswordHasher
	Mailer Mailer
	OAuth  OAuthProvider
}
