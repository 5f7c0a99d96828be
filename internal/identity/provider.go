// Package identity talks to the external identity provider and republishes
// its session lifecycle as an ordered event stream.
package identity

import (
	"context"
	"errors"

	"github.com/fjod/go_storefront/internal/domain"
)

type AuthEvent string

const (
	EventInitialSession AuthEvent = "INITIAL_SESSION"
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
)

// Validation failures surfaced before any remote call is made.
var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
)

// AuthError carries the provider's user-facing failure message (bad
// credentials, duplicate signup). It never alters held session state.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// Provider is the identity capability the engine consumes. Events delivered
// through OnAuthStateChange arrive in order; each one is a full authoritative
// snapshot of the session.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password, displayName string) (*domain.User, error)
	SignOut(ctx context.Context) error
	GetSession(ctx context.Context) (*domain.Session, error)
	OnAuthStateChange(fn func(event AuthEvent, session *domain.Session)) (unsubscribe func())
}
