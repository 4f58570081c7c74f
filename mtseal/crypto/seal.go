package crypto

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

var (
	ErrCiphertextTooShort = errors.New("crypto: ciphertext too short")
	ErrDecryptionFailed   = errors.New("crypto: decryption failed")
)

const (
	SealSaltSize  = 16
	SealNonceSize = chacha20poly1305.NonceSizeX

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// PassphraseKey derives a 32-byte sealing key with Argon2id.
func PassphraseKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
}

// SealWithPassphrase encrypts and authenticates plaintext under a passphrase.
// Output: salt (16 bytes) || nonce (24 bytes) || ciphertext || tag (16 bytes)
func SealWithPassphrase(passphrase, plaintext, ad []byte, rng io.Reader) ([]byte, error) {
	if rng == nil {
		rng = rand.Reader
	}
	out := make([]byte, SealSaltSize+SealNonceSize, SealSaltSize+SealNonceSize+len(plaintext)+chacha20poly1305.Overhead)
	if _, err := io.ReadFull(rng, out); err != nil {
		return nil, err
	}
	key := PassphraseKey(passphrase, out[:SealSaltSize])
	defer clear(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return aead.Seal(out, out[SealSaltSize:], plaintext, ad), nil
}

// OpenWithPassphrase reverses SealWithPassphrase.
func OpenWithPassphrase(passphrase, sealed, ad []byte) ([]byte, error) {
	if len(sealed) < SealSaltSize+SealNonceSize+chacha20poly1305.Overhead {
		return nil, ErrCiphertextTooShort
	}
	salt := sealed[:SealSaltSize]
	nonce := sealed[SealSaltSize : SealSaltSize+SealNonceSize]

	key := PassphraseKey(passphrase, salt)
	defer clear(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, sealed[SealSaltSize+SealNonceSize:], ad)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
