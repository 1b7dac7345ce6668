package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// DefaultIterations matches the PBKDF2 work factor used for passphrase keys.
	DefaultIterations = 100_000
)

// KeyProvider supplies the symmetric key used by the Engine.
type KeyProvider interface {
	Key() ([]byte, error)
}

// StaticKey is a KeyProvider backed by raw key bytes.
type StaticKey []byte

// Key returns a copy of the key bytes.
func (k StaticKey) Key() ([]byte, error) {
	if len(k) == 0 {
		return nil, ErrKeyUnavailable
	}
	if len(k) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", ErrKeyUnavailable, KeySize, len(k))
	}
	out := make([]byte, len(k))
	copy(out, k)
	return out, nil
}

// ParseStaticKey decodes a base64 or hex encoded 32-byte key.
func ParseStaticKey(encoded string) (StaticKey, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrKeyUnavailable
	}
	if raw, err := hex.DecodeString(encoded); err == nil && len(raw) == KeySize {
		return StaticKey(raw), nil
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if raw, err := enc.DecodeString(encoded); err == nil && len(raw) == KeySize {
			return StaticKey(raw), nil
		}
	}
	return nil, fmt.Errorf("%w: expected %d bytes encoded as hex or base64", ErrKeyUnavailable, KeySize)
}

// PassphraseKey derives the key from a passphrase with PBKDF2-HMAC-SHA256.
// The derivation runs once; later calls reuse the result.
type PassphraseKey struct {
	passphrase string
	salt       []byte
	iterations int

	once sync.Once
	key  []byte
}

// NewPassphraseKey builds a PassphraseKey. A zero salt is used when none is given.
func NewPassphraseKey(passphrase string, salt []byte, iterations int) *PassphraseKey {
	if len(salt) == 0 {
		salt = make([]byte, 16)
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &PassphraseKey{passphrase: passphrase, salt: salt, iterations: iterations}
}

// Key returns the derived key.
func (p *PassphraseKey) Key() ([]byte, error) {
	if p == nil || p.passphrase == "" {
		return nil, ErrKeyUnavailable
	}
	p.once.Do(func() {
		p.key = pbkdf2.Key([]byte(p.passphrase), p.salt, p.iterations, KeySize, sha256.New)
	})
	out := make([]byte, len(p.key))
	copy(out, p.key)
	return out, nil
}
