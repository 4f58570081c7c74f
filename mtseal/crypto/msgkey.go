package crypto

// MessageKeySize is the length of the message key carried in every frame.
const MessageKeySize = 16

// MessageKey binds one message to the shared secret.
type MessageKey [MessageKeySize]byte

// DeriveMessageKeyDigest returns SHA-256(secret[s] || padded).
func DeriveMessageKeyDigest(secret []byte, s Slice, padded []byte) ([DigestSize]byte, error) {
	part, err := s.from(secret)
	if err != nil {
		return [DigestSize]byte{}, err
	}
	return Hash(part, padded), nil
}

// DeriveMessageKey returns the middle 128 bits (bytes 8..24) of the message key digest.
func DeriveMessageKey(secret []byte, s Slice, padded []byte) (MessageKey, error) {
	digest, err := DeriveMessageKeyDigest(secret, s, padded)
	if err != nil {
		return MessageKey{}, err
	}
	var mk MessageKey
	copy(mk[:], digest[8:24])
	return mk, nil
}
