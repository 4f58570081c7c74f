package crypto

import (
	"crypto/sha1"
	"encoding/binary"
)

// AuthKeySize is the length of a negotiated shared secret.
const AuthKeySize = 256

// AuthKeyID identifies a shared secret on the wire: the lower-order 64 bits of
// SHA-1(secret), read little-endian.
func AuthKeyID(secret []byte) uint64 {
	sum := sha1.Sum(secret)
	return binary.LittleEndian.Uint64(sum[12:20])
}
