package protocol

import "fmt"

// FingerprintSource selects which bytes the message key is computed over.
type FingerprintSource uint8

const (
	// FingerprintPlaintextBased pads and fingerprints the payload alone, encrypts
	// it, and carries the ciphertext inside a clear envelope.
	FingerprintPlaintextBased FingerprintSource = 1
	// FingerprintCiphertextBased fingerprints the whole envelope and encrypts it,
	// so salt, session id, message id and sequence number travel encrypted.
	FingerprintCiphertextBased FingerprintSource = 2
)

func (s FingerprintSource) String() string {
	switch s {
	case FingerprintPlaintextBased:
		return "plaintext"
	case FingerprintCiphertextBased:
		return "ciphertext"
	default:
		return "unknown"
	}
}

// ParseFingerprintSource accepts the names returned by String.
func ParseFingerprintSource(s string) (FingerprintSource, error) {
	switch s {
	case "plaintext":
		return FingerprintPlaintextBased, nil
	case "ciphertext":
		return FingerprintCiphertextBased, nil
	default:
		return 0, fmt.Errorf("protocol: unknown fingerprint source %q", s)
	}
}
