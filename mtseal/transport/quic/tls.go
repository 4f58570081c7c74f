package quic

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/subtle"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"math/big"
	"time"

	sha256 "github.com/minio/sha256-simd"
)

// ALPN identifies frame streams during the QUIC handshake.
const ALPN = "mtseal/1"

// CertHashSize is the length of a pinned certificate hash.
const CertHashSize = sha256.Size

var ErrCertificateMismatch = errors.New("quic: server certificate does not match pinned hash")

// serverIdentity is a throwaway Ed25519 certificate valid for the listener's
// lifetime, plus the SHA-256 of its DER encoding.
type serverIdentity struct {
	cert tls.Certificate
	hash [CertHashSize]byte
}

func newServerIdentity(lifetime time.Duration) (serverIdentity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return serverIdentity{}, err
	}
	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		return serverIdentity{}, err
	}

	now := time.Now()
	tpl := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "mtseal frame listener"},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(lifetime),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, &tpl, &tpl, pub, priv)
	if err != nil {
		return serverIdentity{}, err
	}
	return serverIdentity{
		cert: tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv},
		hash: sha256.Sum256(der),
	}, nil
}

func (id serverIdentity) tlsConfig() *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{id.cert},
		MinVersion:   tls.VersionTLS13,
		NextProtos:   []string{ALPN},
	}
}

// clientTLSConfig accepts the listener's self-signed certificate when its
// SHA-256 equals certHash. An empty certHash accepts any certificate.
func clientTLSConfig(certHash []byte) *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS13,
		NextProtos: []string{ALPN},
		// There is no CA; VerifyPeerCertificate does the check.
		InsecureSkipVerify: true,
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			if len(certHash) == 0 {
				return nil
			}
			if len(rawCerts) == 0 {
				return ErrCertificateMismatch
			}
			sum := sha256.Sum256(rawCerts[0])
			if subtle.ConstantTimeCompare(sum[:], certHash) != 1 {
				return ErrCertificateMismatch
			}
			return nil
		},
	}
}
