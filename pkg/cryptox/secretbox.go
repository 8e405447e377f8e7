package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Sealed blob layout. Every segment is lowercase hex.
const (
	ivSize        = 12 // 96-bit GCM nonce
	tagSize       = 16 // 128-bit GCM tag
	keySize       = 32 // AES-256
	keyHexLength  = keySize * 2
	blobDelimiter = ":"
)

var (
	// ErrNotConfigured is wrapped by every configuration error in this
	// package. These are operator errors and are not retryable.
	ErrNotConfigured = errors.New("cryptox: not configured")

	// ErrKeyMissing means no encryption key was supplied.
	ErrKeyMissing = fmt.Errorf("%w: encryption key is empty", ErrNotConfigured)

	// ErrKeyMalformed means the key is not exactly 64 hex characters.
	ErrKeyMalformed = fmt.Errorf("%w: encryption key must be 64 hex characters", ErrNotConfigured)

	// ErrMalformedCiphertext means the blob is not iv:tag:ciphertext hex.
	ErrMalformedCiphertext = errors.New("cryptox: malformed ciphertext")

	// ErrDecryptFailed means the tag did not authenticate the ciphertext,
	// either because it was tampered with or because the key is wrong.
	ErrDecryptFailed = errors.New("cryptox: decryption failed")
)

// SecretBox seals small secrets (third-party OAuth tokens, TOTP seeds) for
// storage at rest with AES-256-GCM. The key is decoded on first use and the
// box is safe for concurrent use afterwards.
type SecretBox struct {
	hexKey string

	once sync.Once
	aead cipher.AEAD
	err  error
}

// NewSecretBox returns a SecretBox for the given 64 character hex key. The
// key is not validated until the first Encrypt or Decrypt.
func NewSecretBox(hexKey string) *SecretBox {
	return &SecretBox{hexKey: strings.TrimSpace(hexKey)}
}

func (b *SecretBox) load() (cipher.AEAD, error) {
	b.once.Do(func() {
		b.aead, b.err = newAEAD(b.hexKey)
	})
	return b.aead, b.err
}

func newAEAD(hexKey string) (cipher.AEAD, error) {
	if hexKey == "" {
		return nil, ErrKeyMissing
	}
	if len(hexKey) != keyHexLength {
		return nil, ErrKeyMalformed
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, ErrKeyMalformed
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: create cipher: %w", err)
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("cryptox: create GCM: %w", err)
	}
	return gcm, nil
}

// Validate decodes the key and reports any configuration error without
// sealing anything.
func (b *SecretBox) Validate() error {
	_, err := b.load()
	return err
}

// Encrypt seals plaintext under a fresh random IV and returns
// "<iv>:<tag>:<ciphertext>". Encrypting the same value twice never gives the
// same output.
func (b *SecretBox) Encrypt(plaintext string) (string, error) {
	aead, err := b.load()
	if err != nil {
		return "", err
	}

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("cryptox: generate iv: %w", err)
	}

	// Seal returns ciphertext || tag.
	sealed := aead.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return strings.Join([]string{
		hex.EncodeToString(iv),
		hex.EncodeToString(tag),
		hex.EncodeToString(ciphertext),
	}, blobDelimiter), nil
}

// Decrypt opens a blob produced by Encrypt. It returns ErrMalformedCiphertext
// when the blob cannot be parsed and ErrDecryptFailed when the tag does not
// verify. Callers should treat both as terminal.
func (b *SecretBox) Decrypt(serialized string) (string, error) {
	aead, err := b.load()
	if err != nil {
		return "", err
	}

	iv, tag, ciphertext, err := splitBlob(serialized)
	if err != nil {
		return "", err
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}

func splitBlob(serialized string) (iv, tag, ciphertext []byte, err error) {
	parts := strings.Split(serialized, blobDelimiter)
	if len(parts) != 3 {
		return nil, nil, nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedCiphertext, len(parts))
	}

	if len(parts[0]) != ivSize*2 {
		return nil, nil, nil, fmt.Errorf("%w: iv must be %d hex characters", ErrMalformedCiphertext, ivSize*2)
	}
	if len(parts[1]) != tagSize*2 {
		return nil, nil, nil, fmt.Errorf("%w: tag must be %d hex characters", ErrMalformedCiphertext, tagSize*2)
	}
	for _, p := range parts {
		if p != strings.ToLower(p) {
			return nil, nil, nil, fmt.Errorf("%w: hex must be lowercase", ErrMalformedCiphertext)
		}
	}

	if iv, err = hex.DecodeString(parts[0]); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: iv is not hex", ErrMalformedCiphertext)
	}
	if tag, err = hex.DecodeString(parts[1]); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: tag is not hex", ErrMalformedCiphertext)
	}
	if ciphertext, err = hex.DecodeString(parts[2]); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: ciphertext is not hex", ErrMalformedCiphertext)
	}
	return iv, tag, ciphertext, nil
}

// GenerateKeyHex returns a new random AES-256 key encoded as 64 lowercase hex
// characters, suitable for ENCRYPTION_KEY.
func GenerateKeyHex() (string, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("cryptox: generate key: %w", err)
	}
	return hex.EncodeToString(key), nil
}
