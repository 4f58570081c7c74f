package crypto

import (
	sha256 "github.com/minio/sha256-simd"
)

// DigestSize is the size of every digest used by the key schedule.
const DigestSize = sha256.Size

// Hash returns SHA-256 over the concatenation of parts.
func Hash(parts ...[]byte) [DigestSize]byte {
	h := sha256.New()
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	var out [DigestSize]byte
	h.Sum(out[:0])
	return out
}
