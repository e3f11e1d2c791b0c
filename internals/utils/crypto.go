package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	// ErrMalformedSealed means the stored value is not a nonce followed by a GCM payload
	ErrMalformedSealed = errors.New("sealed value is malformed")
	// ErrUnseal covers both a key mismatch and a modified payload; GCM cannot tell them apart
	ErrUnseal = errors.New("sealed value failed authentication")
)

// Seal encrypts secret with AES-GCM under key (16, 24 or 32 bytes) and returns
// hex(nonce || ciphertext || tag)
func Seal(secret, key string) (string, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	return hex.EncodeToString(aead.Seal(nonce, nonce, []byte(secret), nil)), nil
}

// Unseal reverses Seal
func Unseal(sealed, key string) (string, error) {
	raw, err := hex.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedSealed, err)
	}
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	n := aead.NonceSize()
	if len(raw) < n+aead.Overhead() {
		return "", ErrMalformedSealed
	}
	secret, err := aead.Open(nil, raw[:n], raw[n:], nil)
	if err != nil {
		return "", ErrUnseal
	}
	return string(secret), nil
}

func newAEAD(key string) (cipher.AEAD, error) {
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	return cipher.NewGCM(block)
}
