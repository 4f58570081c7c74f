package protocol

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/TheusHen/mtseal/mtseal/crypto"
)

// OuterHeaderSize covers the secret identifier and the message key.
const OuterHeaderSize = 8 + crypto.MessageKeySize

var (
	ErrShortFrame    = errors.New("protocol: frame too short")
	ErrShortEnvelope = errors.New("protocol: envelope too short")
)

// EncodeOuter prepends the secret identifier and message key to an envelope.
func EncodeOuter(keyID uint64, msgKey crypto.MessageKey, envelope []byte) []byte {
	out := make([]byte, OuterHeaderSize+len(envelope))
	binary.LittleEndian.PutUint64(out[0:8], keyID)
	copy(out[8:OuterHeaderSize], msgKey[:])
	copy(out[OuterHeaderSize:], envelope)
	return out
}

// DecodeOuter splits a frame into its secret identifier, message key and envelope.
// The envelope aliases frame.
func DecodeOuter(frame []byte) (uint64, crypto.MessageKey, []byte, error) {
	var mk crypto.MessageKey
	if len(frame) < OuterHeaderSize {
		return 0, mk, nil, ErrShortFrame
	}
	copy(mk[:], frame[8:OuterHeaderSize])
	return binary.LittleEndian.Uint64(frame[0:8]), mk, frame[OuterHeaderSize:], nil
}

// BuildFrame wraps an already encrypted payload into a complete frame:
// key id, message key, then an envelope around ciphertext padded per p.
func BuildFrame(keyID uint64, msgKey crypto.MessageKey, ciphertext []byte, h Header, p crypto.PaddingPolicy, rng io.Reader) ([]byte, error) {
	env, err := EncodeEnvelope(h, ciphertext, p, rng)
	if err != nil {
		return nil, err
	}
	return EncodeOuter(keyID, msgKey, env), nil
}
