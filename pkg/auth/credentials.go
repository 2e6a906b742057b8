package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when a secret matches no role, or not
// the role it was checked against.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialChecker decides whether a supplied secret is acceptable.
type CredentialChecker interface {
	Check(secret string) bool
}

// StaticSecret compares against a cleartext shared secret in constant time.
// An empty StaticSecret accepts nothing.
type StaticSecret string

func (s StaticSecret) Check(secret string) bool {
	if s == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s), []byte(secret)) == 1
}

// HashedSecret compares against a bcrypt hash.
type HashedSecret []byte

// NewHashedSecret validates that hash is a bcrypt hash.
func NewHashedSecret(hash string) (HashedSecret, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("parse bcrypt hash: %w", err)
	}
	return HashedSecret(hash), nil
}

func (h HashedSecret) Check(secret string) bool {
	return bcrypt.CompareHashAndPassword(h, []byte(secret)) == nil
}

// CheckerFor prefers a bcrypt hash when one is configured and falls back to
// the cleartext secret otherwise.
func CheckerFor(hash, plain string) (CredentialChecker, error) {
	if hash != "" {
		return NewHashedSecret(hash)
	}
	return StaticSecret(plain), nil
}

// SecretVerifier re-checks a secret against one specific role. The ledger
// uses it to confirm irreversible deletes.
type SecretVerifier interface {
	VerifySecret(role Role, secret string) error
}

// Authenticator maps shared secrets to roles.
type Authenticator struct {
	checkers map[Role]CredentialChecker
}

// NewAuthenticator builds an Authenticator from one checker per role.
func NewAuthenticator(admin, restricted CredentialChecker) *Authenticator {
	return &Authenticator{checkers: map[Role]CredentialChecker{
		RoleAdmin:      admin,
		RoleRestricted: restricted,
	}}
}

// Authenticate returns the role whose secret matches. Admin is tried first.
func (a *Authenticator) Authenticate(secret string) (Role, error) {
	for _, role := range []Role{RoleAdmin, RoleRestricted} {
		if c := a.checkers[role]; c != nil && c.Check(secret) {
			return role, nil
		}
	}
	return "", ErrInvalidCredentials
}

// VerifySecret implements SecretVerifier.
func (a *Authenticator) VerifySecret(role Role, secret string) error {
	c := a.checkers[role]
	if c == nil || !c.Check(secret) {
		return ErrInvalidCredentials
	}
	return nil
}
