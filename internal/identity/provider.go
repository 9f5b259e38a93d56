// Package identity is the Identity Provider surface. The core trusts
// the user id a Provider resolves and never re-validates credentials.
package identity

import (
	"context"
	"errors"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Provider resolves bearer tokens to authenticated user ids and
// issues new ones at login.
type Provider interface {
	// Authenticate returns the user id a token was issued for, or
	// ErrInvalidToken.
	Authenticate(ctx context.Context, token string) (string, error)
	IssueToken(ctx context.Context, userId string) (string, error)
	RevokeToken(ctx context.Context, token string) error
}
