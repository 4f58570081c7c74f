package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/TheusHen/mtseal/mtseal/crypto"
)

// EnvelopeHeaderSize is the fixed prefix of every envelope.
const EnvelopeHeaderSize = 32

// Header holds the per-message fields of an envelope.
type Header struct {
	Salt      int64
	SessionID int64
	MessageID int64
	SeqNo     uint32
}

// EncodeEnvelope lays out an envelope and pads it. All integers are little endian.
//
//	8 bytes: server salt
//	8 bytes: session id
//	8 bytes: message id
//	4 bytes: sequence number
//	4 bytes: body length
//	N bytes: body
//	padding: at least p.Min bytes, total a multiple of p.BlockSize
func EncodeEnvelope(h Header, body []byte, p crypto.PaddingPolicy, rng io.Reader) ([]byte, error) {
	if uint64(len(body)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: body of %d bytes", crypto.ErrInvalidConfiguration, len(body))
	}
	buf := make([]byte, EnvelopeHeaderSize+len(body))
	binary.LittleEndian.PutUint64(buf[0:8], uint64(h.Salt))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(h.SessionID))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(h.MessageID))
	binary.LittleEndian.PutUint32(buf[24:28], h.SeqNo)
	binary.LittleEndian.PutUint32(buf[28:32], uint32(len(body)))
	copy(buf[EnvelopeHeaderSize:], body)
	return p.Pad(buf, rng)
}

// DecodeEnvelope parses an unencrypted envelope and returns its header and body.
// Padding is ignored.
func DecodeEnvelope(env []byte) (Header, []byte, error) {
	if len(env) < EnvelopeHeaderSize {
		return Header{}, nil, ErrShortEnvelope
	}
	h := Header{
		Salt:      int64(binary.LittleEndian.Uint64(env[0:8])),
		SessionID: int64(binary.LittleEndian.Uint64(env[8:16])),
		MessageID: int64(binary.LittleEndian.Uint64(env[16:24])),
		SeqNo:     binary.LittleEndian.Uint32(env[24:28]),
	}
	n := binary.LittleEndian.Uint32(env[28:32])
	if uint64(n) > uint64(len(env)-EnvelopeHeaderSize) {
		return Header{}, nil, fmt.Errorf("%w: body length %d", ErrShortEnvelope, n)
	}
	return h, env[EnvelopeHeaderSize : EnvelopeHeaderSize+int(n)], nil
}
