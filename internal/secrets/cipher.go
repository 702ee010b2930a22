// Package secrets provides the encrypt-at-rest boundary for setting values.
// The rest of the application only ever sees plaintext logical values; the
// settings service calls into a Cipher right before and after the database.
package secrets

import (
	"crypto/rand"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrBadKeySize is returned when the encryption key is not 32 bytes.
	ErrBadKeySize = errors.New("encryption key must be 32 bytes")

	// ErrCiphertextTooShort is returned when a stored value is shorter than a nonce.
	ErrCiphertextTooShort = errors.New("ciphertext shorter than nonce")
)

// Cipher encrypts and decrypts setting values at the persistence boundary.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// Box is a Cipher backed by ChaCha20-Poly1305 with a random nonce prefix.
type Box struct {
	key []byte
}

// NewBox creates a Box from a 32 byte key.
func NewBox(key []byte) (*Box, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrBadKeySize
	}

	return &Box{key: key}, nil
}

// Encrypt seals plaintext and prefixes the nonce to the returned ciphertext.
func (b *Box) Encrypt(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(b.key)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create cipher")
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to generate nonce")
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a ciphertext produced by Encrypt.
func (b *Box) Decrypt(ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(b.key)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create cipher")
	}

	if len(ciphertext) < aead.NonceSize() {
		return nil, ErrCiphertextTooShort
	}

	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to decrypt value")
	}

	return plaintext, nil
}

// Noop is a Cipher that stores values as-is. Used when no encryption key is
// configured and in tests.
type Noop struct{}

// Encrypt returns the plaintext unchanged.
func (Noop) Encrypt(plaintext []byte) ([]byte, error) { return plaintext, nil }

// Decrypt returns the ciphertext unchanged.
func (Noop) Decrypt(ciphertext []byte) ([]byte, error) { return ciphertext, nil }
