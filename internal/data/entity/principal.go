package entity

import (
	"github.com/google/uuid"
)

// Principal is the authenticated caller. It is either a LocalPrincipal or a
// FederatedPrincipal; nothing else implements it.
type Principal interface {
	Subject() uuid.UUID
	HasRole(role UserRole) bool
	isPrincipal()
}

// LocalPrincipal signed in with username and password.
type LocalPrincipal struct {
	UserID   uuid.UUID
	Username string
	Role     UserRole
}

func (p LocalPrincipal) Subject() uuid.UUID         { return p.UserID }
func (p LocalPrincipal) HasRole(role UserRole) bool { return p.Role == role }
func (LocalPrincipal) isPrincipal()                 {}

// FederatedPrincipal signed in through an external identity provider.
// ProfileIncomplete is set while the caller only holds a completion token.
type FederatedPrincipal struct {
	UserID            uuid.UUID
	Email             string
	Role              UserRole
	Provider          AuthProvider
	ProfileIncomplete bool
}

func (p FederatedPrincipal) Subject() uuid.UUID         { return p.UserID }
func (p FederatedPrincipal) HasRole(role UserRole) bool { return p.Role == role }
func (FederatedPrincipal) isPrincipal()                 {}
