package session

import (
	"errors"
	"testing"

	"github.com/TheusHen/mtseal/mtseal/crypto"
)

func testSecret() []byte {
	secret := make([]byte, crypto.AuthKeySize)
	for i := range secret {
		secret[i] = byte(i * 3)
	}
	return secret
}

func TestNewContext(t *testing.T) {
	secret := testSecret()
	c, err := NewContext(secret, Config{Role: crypto.RoleResponder, ServerSalt: 77, SessionID: -5})
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if c.AuthKeyID() != crypto.AuthKeyID(secret) {
		t.Fatalf("AuthKeyID mismatch")
	}
	want, _ := crypto.ScheduleFor(crypto.RoleResponder)
	if c.Schedule() != want {
		t.Fatalf("schedule mismatch: %+v", c.Schedule())
	}
	if c.ServerSalt() != 77 || c.SessionID() != -5 || c.Role() != crypto.RoleResponder {
		t.Fatalf("context fields not carried over")
	}

	// The context owns a copy of the secret.
	padded := make([]byte, 16)
	before, err := c.DeriveMessageKey(padded)
	if err != nil {
		t.Fatalf("DeriveMessageKey: %v", err)
	}
	for i := range secret {
		secret[i] ^= 0xff
	}
	after, err := c.DeriveMessageKey(padded)
	if err != nil {
		t.Fatalf("DeriveMessageKey: %v", err)
	}
	if before != after {
		t.Fatalf("context shares the caller's secret buffer")
	}
	want, err := crypto.DeriveMessageKey(testSecret(), c.Schedule().MessageKey, padded)
	if err != nil {
		t.Fatalf("crypto.DeriveMessageKey: %v", err)
	}
	if after != want {
		t.Fatalf("context derived with the wrong slice")
	}
}

func TestNewContextRejects(t *testing.T) {
	if _, err := NewContext(nil, Config{Role: crypto.RoleInitiator}); !errors.Is(err, crypto.ErrInvalidSecretLength) {
		t.Fatalf("expected ErrInvalidSecretLength, got %v", err)
	}
	if _, err := NewContext(testSecret(), Config{}); !errors.Is(err, crypto.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration for missing role, got %v", err)
	}
}

func TestSetServerSalt(t *testing.T) {
	c, _ := NewContext(testSecret(), Config{Role: crypto.RoleInitiator, ServerSalt: 1})
	c.SetServerSalt(2)
	if c.ServerSalt() != 2 {
		t.Fatalf("salt not replaced")
	}
}

func TestContextSeqNo(t *testing.T) {
	c, _ := NewContext(testSecret(), Config{Role: crypto.RoleInitiator, SeqNo: 10})
	if got := c.NextSeqNo(); got != 10 {
		t.Fatalf("NextSeqNo = %d, want 10", got)
	}
	if got := c.SeqNo(); got != 11 {
		t.Fatalf("SeqNo = %d, want 11", got)
	}
}
