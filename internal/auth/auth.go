// Package auth resolves access tokens to a signed-in identity. Passwords are
// out of scope: a token is issued once at registration and only its hash is
// stored.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/sadopc/kairu/internal/store"
)

// ErrUnauthorized is returned for missing or unknown tokens.
var ErrUnauthorized = errors.New("unauthorized: invalid token")

const tokenPrefix = "kairu_"

// Identity is the signed-in user. Email namespaces every collection.
type Identity struct {
	Email       string
	DisplayName string
}

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Identity, error)
}

// UserStore is the subset of the store the authenticator needs.
type UserStore interface {
	CreateUser(ctx context.Context, email, displayName string) (*store.User, error)
	AddAPIKey(ctx context.Context, keyHash, email string) error
	LookupAPIKey(ctx context.Context, keyHash string) (*store.User, error)
}

type TokenAuthenticator struct {
	users UserStore
}

func NewTokenAuthenticator(users UserStore) *TokenAuthenticator {
	return &TokenAuthenticator{users: users}
}

func (a *TokenAuthenticator) Authenticate(ctx context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrUnauthorized
	}
	u, err := a.users.LookupAPIKey(ctx, HashToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return Identity{}, ErrUnauthorized
	}
	if err != nil {
		return Identity{}, fmt.Errorf("authenticate: %w", err)
	}
	return Identity{Email: u.Email, DisplayName: u.DisplayName}, nil
}

// Register creates the user and returns a freshly issued token. The token is
// not recoverable afterwards.
func (a *TokenAuthenticator) Register(ctx context.Context, email, displayName string) (Identity, string, error) {
	u, err := a.users.CreateUser(ctx, email, displayName)
	if err != nil {
		return Identity{}, "", fmt.Errorf("register: %w", err)
	}
	token, err := a.Issue(ctx, u.Email)
	if err != nil {
		return Identity{}, "", err
	}
	return Identity{Email: u.Email, DisplayName: u.DisplayName}, token, nil
}

// Issue adds another token for an existing user.
func (a *TokenAuthenticator) Issue(ctx context.Context, email string) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := tokenPrefix + hex.EncodeToString(buf)
	if err := a.users.AddAPIKey(ctx, HashToken(token), email); err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
