package crypto

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// MinPadding and MaxPadding bound the random bytes appended to a message.
	MinPadding = 12
	MaxPadding = 1024
	// BlockSize is the AES block size every padded buffer is aligned to.
	BlockSize = 16
)

// PaddingDistribution chooses how many padding bytes a policy asks for.
type PaddingDistribution int

const (
	// PaddingFixed always pads by the policy minimum.
	PaddingFixed PaddingDistribution = iota
	// PaddingRandom draws the padding length uniformly from [Min, Max].
	PaddingRandom
)

func (d PaddingDistribution) String() string {
	switch d {
	case PaddingFixed:
		return "fixed"
	case PaddingRandom:
		return "random"
	default:
		return "unknown"
	}
}

// PaddingPolicy configures padding of payloads and envelopes.
type PaddingPolicy struct {
	Distribution PaddingDistribution
	Min          int
	Max          int
	BlockSize    int
}

// DefaultPaddingPolicy pads by exactly MinPadding bytes before alignment.
func DefaultPaddingPolicy() PaddingPolicy {
	return PaddingPolicy{
		Distribution: PaddingFixed,
		Min:          MinPadding,
		Max:          MaxPadding,
		BlockSize:    BlockSize,
	}
}

// Validate reports whether the policy stays inside the protocol bounds.
// A fixed policy with a zero Max is valid; Max only bounds random draws.
func (p PaddingPolicy) Validate() error {
	maxPad := p.Max
	if maxPad == 0 && p.Distribution == PaddingFixed {
		maxPad = MaxPadding
	}
	if p.Min < MinPadding || maxPad > MaxPadding || p.Min > maxPad {
		return fmt.Errorf("%w: padding bounds [%d, %d] outside [%d, %d]",
			ErrInvalidConfiguration, p.Min, p.Max, MinPadding, MaxPadding)
	}
	if p.BlockSize <= 0 {
		return fmt.Errorf("%w: block size %d", ErrInvalidConfiguration, p.BlockSize)
	}
	switch p.Distribution {
	case PaddingFixed, PaddingRandom:
	default:
		return fmt.Errorf("%w: padding distribution %d", ErrInvalidConfiguration, p.Distribution)
	}
	return nil
}

// Pad appends random bytes to data according to the policy.
// The length draw and the padding bytes both come from rng.
func (p PaddingPolicy) Pad(data []byte, rng io.Reader) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.Reader
	}
	minPad := p.Min
	if p.Distribution == PaddingRandom && p.Max > p.Min {
		var b [2]byte
		if _, err := io.ReadFull(rng, b[:]); err != nil {
			return nil, err
		}
		minPad += int(binary.LittleEndian.Uint16(b[:])) % (p.Max - p.Min + 1)
	}
	return Pad(data, minPad, p.BlockSize, rng)
}

// Pad returns a copy of data followed by at least minPad random bytes, extended
// until the total length is a multiple of blockSize.
func Pad(data []byte, minPad, blockSize int, rng io.Reader) ([]byte, error) {
	if minPad < MinPadding || minPad > MaxPadding {
		return nil, fmt.Errorf("%w: padding %d outside [%d, %d]", ErrInvalidConfiguration, minPad, MinPadding, MaxPadding)
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: block size %d", ErrInvalidConfiguration, blockSize)
	}
	if rng == nil {
		rng = rand.Reader
	}

	total := len(data) + minPad
	if r := total % blockSize; r != 0 {
		total += blockSize - r
	}
	out := make([]byte, total)
	copy(out, data)
	if _, err := io.ReadFull(rng, out[len(data):]); err != nil {
		return nil, err
	}
	return out, nil
}
