package session

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	keySalt   = "chorehub-cookie-v1"
	argonTime = 3
	argonMem  = 64 * 1024
	argonPar  = 4
)

var errMalformed = errors.New("malformed sealed value")

// Sealer encrypts cookie values with XChaCha20-Poly1305. The cookie name is
// bound as associated data so values cannot be moved between cookies.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives the key from secret with Argon2id.
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("cookie secret is empty")
	}
	key := argon2.IDKey([]byte(secret), []byte(keySalt), argonTime, argonMem, argonPar, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create aead: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal returns base64([nonce][ciphertext]).
func (s *Sealer) Seal(name, value string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(value)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(value), []byte(name))
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (s *Sealer) Open(name, sealed string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", errMalformed
	}
	if len(data) < s.aead.NonceSize() {
		return "", errMalformed
	}
	nonce, ciphertext := data[:s.aead.NonceSize()], data[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, []byte(name))
	if err != nil {
		return "", fmt.Errorf("open %s: %w", name, err)
	}
	return string(plain), nil
}
