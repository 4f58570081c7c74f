package session

import "sync"

// SequenceCounter hands out per-connection sequence numbers.
// Values wrap around at 2^32.
type SequenceCounter struct {
	mu   sync.Mutex
	next uint32
}

// Next returns the current value and increments the counter.
func (c *SequenceCounter) Next() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.next
	c.next++
	return v
}

// Commit calls fn with the current value while holding the counter, and
// increments only when fn returns nil.
func (c *SequenceCounter) Commit(fn func(seq uint32) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := fn(c.next); err != nil {
		return err
	}
	c.next++
	return nil
}

// Load returns the current value without advancing it.
func (c *SequenceCounter) Load() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}
