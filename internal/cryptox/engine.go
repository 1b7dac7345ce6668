package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

const (
	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12
	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16
)

var (
	// ErrAuthentication is returned when ciphertext, nonce or tag fail verification.
	ErrAuthentication = errors.New("decryption failed")
	// ErrKeyUnavailable is returned when no usable key is configured.
	ErrKeyUnavailable = errors.New("encryption key unavailable")
)

// Engine seals and opens file payloads with AES-256-GCM.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	keys KeyProvider
	rand io.Reader
}

// NewEngine constructs an Engine drawing its key from provider.
func NewEngine(provider KeyProvider) *Engine {
	return &Engine{keys: provider, rand: rand.Reader}
}

// Encrypt seals plaintext under a fresh random nonce.
func (e *Engine) Encrypt(plaintext []byte) (ciphertext, nonce, tag []byte, err error) {
	aead, err := e.aead()
	if err != nil {
		return nil, nil, nil, err
	}

	nonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(e.rand, nonce); err != nil {
		return nil, nil, nil, fmt.Errorf("generate nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, plaintext, nil)
	split := len(sealed) - TagSize
	return sealed[:split], nonce, sealed[split:], nil
}

// Decrypt opens ciphertext, returning ErrAuthentication on any mismatch.
// No plaintext is returned unless the tag verifies.
func (e *Engine) Decrypt(ciphertext, nonce, tag []byte) ([]byte, error) {
	aead, err := e.aead()
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize || len(tag) != TagSize {
		return nil, ErrAuthentication
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

func (e *Engine) aead() (cipher.AEAD, error) {
	if e == nil || e.keys == nil {
		return nil, ErrKeyUnavailable
	}
	key, err := e.keys.Key()
	if err != nil {
		if errors.Is(err, ErrKeyUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes", ErrKeyUnavailable, KeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	return cipher.NewGCM(block)
}
