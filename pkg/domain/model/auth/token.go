package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// TokenLifetime is how long a session token stays valid
const TokenLifetime = 7 * 24 * time.Hour

// AnonymousSub is the subject used when authentication is disabled
const AnonymousSub = "anonymous"

type TokenID string

func (id TokenID) String() string {
	return string(id)
}

// Validate checks that the token ID is a UUID
func (id TokenID) Validate() error {
	if _, err := uuid.Parse(string(id)); err != nil {
		return goerr.Wrap(err, "invalid token ID format", goerr.V("token_id", string(id)))
	}
	return nil
}

// NewTokenID generates a random token ID
func NewTokenID() TokenID {
	return TokenID(uuid.NewString())
}

type TokenSecret string

func (s TokenSecret) String() string {
	return string(s)
}

// Token is a server side session issued after verifying an identity token
type Token struct {
	ID        TokenID     `firestore:"id" json:"id"`
	Secret    TokenSecret `firestore:"secret" json:"-" masq:"secret"`
	Sub       string      `firestore:"sub" json:"sub"`
	Email     string      `firestore:"email" json:"email"`
	Name      string      `firestore:"name" json:"name"`
	ExpiresAt time.Time   `firestore:"expires_at" json:"expires_at"`
	CreatedAt time.Time   `firestore:"created_at" json:"created_at"`
}

// NewToken issues a token with a random secret
func NewToken(sub, email, name string) *Token {
	now := time.Now().UTC()
	return &Token{
		ID:        NewTokenID(),
		Secret:    newSecret(),
		Sub:       sub,
		Email:     email,
		Name:      name,
		ExpiresAt: now.Add(TokenLifetime),
		CreatedAt: now,
	}
}

// NewAnonymousUser returns the identity used in no-auth mode
func NewAnonymousUser() *Token {
	return NewToken(AnonymousSub, "anonymous@localhost", "Anonymous")
}

func newSecret() TokenSecret {
	buf := make([]byte, 32)
	// crypto/rand.Read never returns an error on supported platforms
	_, _ = rand.Read(buf)
	return TokenSecret(hex.EncodeToString(buf))
}

// Validate checks the required fields
func (t *Token) Validate() error {
	if err := t.ID.Validate(); err != nil {
		return err
	}
	if t.Secret == "" {
		return goerr.New("token secret is required")
	}
	if t.Sub == "" {
		return goerr.New("token subject is required")
	}
	if t.ExpiresAt.IsZero() {
		return goerr.New("token expiration is required")
	}
	return nil
}

// IsExpired reports whether the token can no longer be used
func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
