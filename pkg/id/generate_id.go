package id

import (
	"regexp"

	"github.com/google/uuid"
)

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

// New returns a random v4 identifier in canonical 36-char form.
// Every persisted record (users, investments, ledger entries, requests) is keyed by one.
func New() string { return uuid.NewString() }

// Valid reports whether s is a canonical lowercase uuid as produced by New.
func Valid(s string) bool {
	u, err := uuid.Parse(s)
	return err == nil && u.String() == s
}

// ValidRequestID accepts the two client request-id shapes: a uuid or 32 lowercase hex chars.
func ValidRequestID(s string) bool {
	return Valid(s) || reHex32.MatchString(s)
}
