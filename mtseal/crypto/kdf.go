package crypto

// KeyMaterial is the AES-256 key and IGE initialization vector for one message.
type KeyMaterial struct {
	Key [32]byte
	IV  [32]byte
}

// DeriveKeyMaterial expands a message key into cipher key material:
//
//	a   = SHA-256(msgKey || secret[sa])
//	b   = SHA-256(secret[sb] || msgKey)
//	key = a[0:8] || b[8:24] || a[24:32]
//	iv  = b[0:8] || a[8:24] || b[24:32]
func DeriveKeyMaterial(msgKey MessageKey, secret []byte, sa, sb Slice) (KeyMaterial, error) {
	partA, err := sa.from(secret)
	if err != nil {
		return KeyMaterial{}, err
	}
	partB, err := sb.from(secret)
	if err != nil {
		return KeyMaterial{}, err
	}

	a := Hash(msgKey[:], partA)
	b := Hash(partB, msgKey[:])

	var km KeyMaterial
	copy(km.Key[0:8], a[0:8])
	copy(km.Key[8:24], b[8:24])
	copy(km.Key[24:32], a[24:32])

	copy(km.IV[0:8], b[0:8])
	copy(km.IV[8:24], a[8:24])
	copy(km.IV[24:32], b[24:32])
	return km, nil
}

// Zero wipes the key material.
func (km *KeyMaterial) Zero() {
	clear(km.Key[:])
	clear(km.IV[:])
}
