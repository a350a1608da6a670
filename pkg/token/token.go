// Package token issues and verifies HS256 bearer tokens. Tokens are
// stateless; lifetimes are chosen by the caller on every Issue.
package token

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"pizzeria-backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Purpose string

const (
	PurposeAccess     Purpose = "access"
	PurposeRefresh    Purpose = "refresh"
	PurposeRememberMe Purpose = "remember_me"
	PurposeCompletion Purpose = "completion"
)

var (
	ErrTokenExpired = apperror.New(apperror.Unauthorized, "token expired")
	ErrTokenInvalid = apperror.New(apperror.Unauthorized, "invalid token")
	ErrTokenPurpose = apperror.New(apperror.Forbidden, "token not valid for this operation")
)

// Subject is the identity bound into a token.
type Subject struct {
	UserID   uuid.UUID
	Username string
	Email    string
	Role     string
	Provider string
}

type Claims struct {
	UserID   string  `json:"uid"`
	Username string  `json:"username,omitempty"`
	Email    string  `json:"email,omitempty"`
	Role     string  `json:"role"`
	Provider string  `json:"provider"`
	Purpose  Purpose `json:"purpose"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens. Safe for concurrent use.
type Issuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewIssuer(secret, issuer string) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	return &Issuer{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// Issue returns a signed token for sub valid for ttl.
func (i *Issuer) Issue(sub Subject, purpose Purpose, ttl time.Duration) (string, time.Time, error) {
	now := i.now().UTC()
	expiresAt := now.Add(ttl)

	claims := Claims{
		UserID:   sub.UserID.String(),
		Username: sub.Username,
		Email:    sub.Email,
		Role:     sub.Role,
		Provider: sub.Provider,
		Purpose:  purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   sub.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", purpose, err)
	}
	return signed, expiresAt, nil
}

// Verify parses tokenStr and checks that its purpose is one of allowed.
func (i *Issuer) Verify(tokenStr string, allowed ...Purpose) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(i.now),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, ErrTokenInvalid
	}

	if len(allowed) > 0 && !slices.Contains(allowed, claims.Purpose) {
		return nil, ErrTokenPurpose
	}

	return claims, nil
}

// SubjectID returns the user id carried by the claims.
func (c *Claims) SubjectID() uuid.UUID {
	id, _ := uuid.Parse(c.UserID)
	return id
}
