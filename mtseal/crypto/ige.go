package crypto

import (
	"crypto/aes"
	"errors"
	"fmt"

	"github.com/gotd/ige"
)

var ErrInvalidBlockAlignment = errors.New("crypto: input is not block aligned")

// EncryptIGE encrypts plaintext with AES-256-IGE under km.
// The plaintext must be a whole number of AES blocks.
func EncryptIGE(km KeyMaterial, plaintext []byte) ([]byte, error) {
	if len(plaintext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidBlockAlignment, len(plaintext))
	}
	block, err := aes.NewCipher(km.Key[:])
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(plaintext))
	ige.EncryptBlocks(block, km.IV[:], out, plaintext)
	return out, nil
}
