package identity

import (
	"errors"
	"time"

	"cryptoboost/internal/domain/user"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password too short (min 6)")
	ErrSuspended          = errors.New("account suspended")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// Event is what auth-change observers are told about.
type Event string

const (
	EventSignedIn  Event = "SIGNED_IN"
	EventSignedUp  Event = "SIGNED_UP"
	EventSignedOut Event = "SIGNED_OUT"
)

// Identity is the caller as seen by the rest of the system.
type Identity struct {
	ID    string    `json:"id"`
	Email string    `json:"email"`
	Role  user.Role `json:"role"`
}

func (i Identity) IsAdmin() bool { return i.Role == user.RoleAdmin }

type Session struct {
	AccessToken string    `json:"access_token"`
	TokenID     string    `json:"-"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        Identity  `json:"user"`
}

// claims carried by access tokens; sub is the user id, jti keys the redis session.
type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}
