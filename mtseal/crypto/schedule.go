package crypto

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfiguration = errors.New("crypto: invalid configuration")
	ErrInvalidSecretLength  = errors.New("crypto: shared secret too short")
)

// Role selects which half of the key schedule the local side uses.
type Role uint8

const (
	// RoleInitiator is the side that established the session (the client).
	RoleInitiator Role = 1
	// RoleResponder is the side that accepted it (the server).
	RoleResponder Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleInitiator:
		return "initiator"
	case RoleResponder:
		return "responder"
	default:
		return "unknown"
	}
}

// ParseRole parses the String form of a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "initiator", "client":
		return RoleInitiator, nil
	case "responder", "server":
		return RoleResponder, nil
	default:
		return 0, fmt.Errorf("%w: unknown role %q", ErrInvalidConfiguration, s)
	}
}

// Slice addresses a byte range of the shared secret.
type Slice struct {
	Offset int
	Length int
}

// End returns the first offset past the slice.
func (s Slice) End() int { return s.Offset + s.Length }

func (s Slice) from(secret []byte) ([]byte, error) {
	if s.Offset < 0 || s.Length <= 0 {
		return nil, fmt.Errorf("%w: secret slice [%d:+%d]", ErrInvalidConfiguration, s.Offset, s.Length)
	}
	if s.Offset > len(secret) || s.Length > len(secret)-s.Offset {
		return nil, fmt.Errorf("%w: slice [%d:+%d] of %d-byte secret", ErrInvalidSecretLength, s.Offset, s.Length, len(secret))
	}
	return secret[s.Offset : s.Offset+s.Length], nil
}

// Schedule holds the secret slices one role feeds into the key derivations.
type Schedule struct {
	MessageKey Slice // hashed in front of the padded data
	A          Slice // hashed after the message key
	B          Slice // hashed before the message key
}

// ScheduleFor returns the protocol slices for a role.
// The responder reads every slice 8 bytes further into the secret than the initiator.
func ScheduleFor(r Role) (Schedule, error) {
	var x int
	switch r {
	case RoleInitiator:
		x = 0
	case RoleResponder:
		x = 8
	default:
		return Schedule{}, fmt.Errorf("%w: role %d", ErrInvalidConfiguration, r)
	}
	return Schedule{
		MessageKey: Slice{Offset: 88 + x, Length: 32},
		A:          Slice{Offset: x, Length: 36},
		B:          Slice{Offset: 40 + x, Length: 36},
	}, nil
}

// MinSecretLength returns the shortest secret every slice fits into.
func (s Schedule) MinSecretLength() int {
	n := s.MessageKey.End()
	if e := s.A.End(); e > n {
		n = e
	}
	if e := s.B.End(); e > n {
		n = e
	}
	return n
}
