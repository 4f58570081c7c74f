package session

import (
	"sync/atomic"

	"github.com/benbjohnson/clock"

	"github.com/TheusHen/mtseal/mtseal/crypto"
)

// MessageIDGenerator supplies the message_id field of outgoing envelopes.
type MessageIDGenerator interface {
	NextMessageID() int64
}

// SecondsGenerator puts the unix time in seconds into the upper 32 bits and
// leaves the lower bits zero. Two ids taken within the same second are equal;
// it exists to reproduce frames from implementations that do this.
type SecondsGenerator struct {
	clock clock.Clock
}

// NewSecondsGenerator reads time from clk, or the system clock when clk is nil.
func NewSecondsGenerator(clk clock.Clock) *SecondsGenerator {
	if clk == nil {
		clk = clock.New()
	}
	return &SecondsGenerator{clock: clk}
}

// NextMessageID returns the current unix second shifted into the upper half.
func (g *SecondsGenerator) NextMessageID() int64 {
	return g.clock.Now().Unix() << 32
}

// MonotonicGenerator approximates unixtime * 2^32: seconds in the upper half,
// the fraction of the second in the lower half. Ids are strictly increasing
// across calls and congruent to 0 mod 4 for the initiator, 1 mod 4 for the
// responder.
type MonotonicGenerator struct {
	clock     clock.Clock
	remainder int64
	last      atomic.Int64
}

// NewMonotonicGenerator returns a generator for role's ids, reading time from
// clk or the system clock when clk is nil.
func NewMonotonicGenerator(clk clock.Clock, role crypto.Role) *MonotonicGenerator {
	if clk == nil {
		clk = clock.New()
	}
	g := &MonotonicGenerator{clock: clk}
	if role == crypto.RoleResponder {
		g.remainder = 1
	}
	return g
}

// NextMessageID returns an id greater than every id returned before it.
func (g *MonotonicGenerator) NextMessageID() int64 {
	now := g.clock.Now()
	frac := uint64(now.Nanosecond()) << 32 / 1_000_000_000
	id := now.Unix()<<32 | int64(frac)
	id = id&^3 | g.remainder

	for {
		last := g.last.Load()
		next := id
		if next <= last {
			next = last + 4
		}
		if g.last.CompareAndSwap(last, next) {
			return next
		}
	}
}
