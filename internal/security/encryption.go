package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
)

// API keys are encrypted at rest with XChaCha20-Poly1305. The server-held
// key comes from the AICRP_ENCRYPTION_KEY environment variable; any string
// works since it is stretched through SHA-256 to the cipher key size.
var encryptionKey []byte

// LoadEncryptionKey derives the at-rest encryption key from the environment.
// It should be called at application startup, before any config is saved.
func LoadEncryptionKey() {
	secret := os.Getenv("AICRP_ENCRYPTION_KEY")
	if secret == "" {
		log.Println("WARNING: AICRP_ENCRYPTION_KEY environment variable not set. API keys cannot be stored.")
		encryptionKey = nil
		return
	}

	sum := sha256.Sum256([]byte(secret))
	encryptionKey = sum[:]
}

// SetEncryptionKeyForTest installs a fixed key, bypassing the environment.
func SetEncryptionKeyForTest(secret string) {
	sum := sha256.Sum256([]byte(secret))
	encryptionKey = sum[:]
}

// EncryptAPIKey seals an API key for storage. Output is base64 of
// nonce || ciphertext. An empty key encrypts to the empty string.
func EncryptAPIKey(apiKey string) (string, error) {
	if apiKey == "" {
		return "", nil
	}
	if encryptionKey == nil {
		return "", errors.New("encryption key not configured (set AICRP_ENCRYPTION_KEY)")
	}

	aead, err := chacha20poly1305.NewX(encryptionKey)
	if err != nil {
		return "", fmt.Errorf("failed to construct cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(apiKey), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptAPIKey opens a value produced by EncryptAPIKey.
func DecryptAPIKey(encrypted string) (string, error) {
	if encrypted == "" {
		return "", nil
	}
	if encryptionKey == nil {
		return "", errors.New("encryption key not configured (set AICRP_ENCRYPTION_KEY)")
	}

	raw, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("stored API key is not valid base64: %w", err)
	}

	aead, err := chacha20poly1305.NewX(encryptionKey)
	if err != nil {
		return "", fmt.Errorf("failed to construct cipher: %w", err)
	}

	if len(raw) < aead.NonceSize() {
		return "", errors.New("stored API key is truncated")
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]

	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt stored API key: %w", err)
	}
	return string(plain), nil
}
