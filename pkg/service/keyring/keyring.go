// Package keyring seals user supplied API keys before they are stored
package keyring

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/crypto/chacha20poly1305"
)

var (
	ErrInvalidKey    = goerr.New("invalid encryption key")
	ErrInvalidSealed = goerr.New("invalid sealed value")
)

// Keyring encrypts with XChaCha20-Poly1305. The sealed form is
// base64(nonce || ciphertext).
type Keyring struct {
	aead cipher.AEAD
}

// New builds a keyring from a 32 byte key
func New(key []byte) (*Keyring, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, goerr.Wrap(ErrInvalidKey, "key must be 32 bytes", goerr.V("length", len(key)))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create cipher")
	}
	return &Keyring{aead: aead}, nil
}

// NewFromHex builds a keyring from a 64 character hex key
func NewFromHex(s string) (*Keyring, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidKey, "key is not hex encoded")
	}
	return New(key)
}

// NewEphemeral creates a keyring with a random key. Values sealed by it
// cannot be opened after the process exits.
func NewEphemeral() (*Keyring, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, goerr.Wrap(err, "failed to generate key")
	}
	return New(key)
}

// Seal encrypts plaintext. additional binds the ciphertext to a context such
// as the owning user ID.
func (k *Keyring) Seal(plaintext, additional string) (string, error) {
	nonce := make([]byte, k.aead.NonceSize(), k.aead.NonceSize()+len(plaintext)+k.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", goerr.Wrap(err, "failed to generate nonce")
	}
	sealed := k.aead.Seal(nonce, nonce, []byte(plaintext), []byte(additional))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal with the same additional data
func (k *Keyring) Open(sealed, additional string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", goerr.Wrap(ErrInvalidSealed, "sealed value is not base64")
	}
	if len(raw) < k.aead.NonceSize()+k.aead.Overhead() {
		return "", goerr.Wrap(ErrInvalidSealed, "sealed value is too short")
	}

	nonce, ciphertext := raw[:k.aead.NonceSize()], raw[k.aead.NonceSize():]
	plain, err := k.aead.Open(nil, nonce, ciphertext, []byte(additional))
	if err != nil {
		return "", goerr.Wrap(ErrInvalidSealed, "failed to decrypt sealed value")
	}
	return string(plain), nil
}
