package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// sealedPrefix marks values written by MessageCipher. Rows stored before
// encryption was enabled lack it and are returned unchanged.
const sealedPrefix = "gw1:"

var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// MessageCipher seals saved message text with AES-256-GCM.
// Format: "gw1:" + base64(nonce || ciphertext).
type MessageCipher struct {
	gcm cipher.AEAD
}

// NewMessageCipher derives a 32-byte key from secret with HKDF-SHA256, so any
// non-empty secret length is accepted.
func NewMessageCipher(secret string) (*MessageCipher, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("encryption secret is empty")
	}
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("ghostwriter message text"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &MessageCipher{gcm: gcm}, nil
}

func (c *MessageCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}
	ct := c.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(ct), nil
}

func (c *MessageCipher) Decrypt(stored string) (string, error) {
	if !strings.HasPrefix(stored, sealedPrefix) {
		return stored, nil
	}
	data, err := base64.StdEncoding.DecodeString(stored[len(sealedPrefix):])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	ns := c.gcm.NonceSize()
	if len(data) < ns {
		return "", ErrMalformedCiphertext
	}
	pt, err := c.gcm.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("gcm open: %w", err)
	}
	return string(pt), nil
}
