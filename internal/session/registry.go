// Package session maps opaque tokens to authenticated user identities.
// The registry is the single source of truth for session validity.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// ErrNoSession is returned by Resolve for absent or expired tokens.
var ErrNoSession = errors.New("no such session")

// Registry is the session port used as the first gate of every
// authenticated request.
type Registry interface {
	// Create issues a fresh opaque token for the user with a full TTL.
	Create(ctx context.Context, userID int) (string, error)
	// Resolve returns the user behind a token, or ErrNoSession.
	Resolve(ctx context.Context, token string) (int, error)
	// Destroy removes a token. Destroying an absent token is not an error.
	Destroy(ctx context.Context, token string) error
}

// generateToken returns 32 cryptographically random bytes, hex encoded.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
