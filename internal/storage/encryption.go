package storage

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// SealedHeader prefixes every encrypted save file.
const SealedHeader = "DKSAVE01"

const (
	// Argon2id parameters (RFC 9106 second recommended option).
	defaultArgon2Time    = 1
	defaultArgon2Memory  = 64 * 1024 // KB
	defaultArgon2Threads = 4
	keyLength            = 32 // AES-256

	saltLength = 16
)

// ErrPasswordRequired is returned when a sealed file is read without a password.
var ErrPasswordRequired = errors.New("save file is encrypted and no password is configured")

// EncryptionConfig holds the password and key derivation cost.
type EncryptionConfig struct {
	Password string

	// Argon2Time is the number of Argon2 passes.
	Argon2Time uint32

	// Argon2Memory is the Argon2 memory cost in KB.
	Argon2Memory uint32

	Argon2Threads uint8
}

// DefaultEncryptionConfig returns encryption config with secure defaults.
func DefaultEncryptionConfig(password string) *EncryptionConfig {
	return &EncryptionConfig{
		Password:      password,
		Argon2Time:    defaultArgon2Time,
		Argon2Memory:  defaultArgon2Memory,
		Argon2Threads: defaultArgon2Threads,
	}
}

func (c *EncryptionConfig) gcm(salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(c.Password), salt, c.Argon2Time, c.Argon2Memory, c.Argon2Threads, keyLength)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Seal encrypts plaintext with AES-256-GCM under an Argon2id-derived key.
// Layout: header || salt || nonce || ciphertext+tag.
func Seal(plaintext []byte, config *EncryptionConfig) ([]byte, error) {
	if config == nil || config.Password == "" {
		return nil, ErrPasswordRequired
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := config.gcm(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(SealedHeader)+len(salt)+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, SealedHeader...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// Unseal reverses Seal. Data without the header is returned unchanged, so
// plain save files stay readable after encryption is switched on.
func Unseal(data []byte, config *EncryptionConfig) ([]byte, error) {
	if !IsSealed(data) {
		return data, nil
	}
	if config == nil || config.Password == "" {
		return nil, ErrPasswordRequired
	}

	body := data[len(SealedHeader):]
	if len(body) < saltLength {
		return nil, fmt.Errorf("encrypted data too short")
	}
	salt, body := body[:saltLength], body[saltLength:]

	gcm, err := config.gcm(salt)
	if err != nil {
		return nil, err
	}
	if len(body) < gcm.NonceSize()+gcm.Overhead() {
		return nil, fmt.Errorf("encrypted data too short")
	}
	nonce, ciphertext := body[:gcm.NonceSize()], body[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed (wrong password or corrupted data): %w", err)
	}
	return plaintext, nil
}

// IsSealed reports whether data carries the encryption header.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, []byte(SealedHeader))
}
