package session

import (
	"fmt"
	"sync/atomic"

	"github.com/TheusHen/mtseal/mtseal/crypto"
)

// Config carries the values negotiated when the session was established.
type Config struct {
	Role       crypto.Role
	ServerSalt int64
	SessionID  int64
	// SeqNo is the first sequence number to hand out; non-zero when resuming.
	SeqNo uint32
}

// Context is the per-connection state every outgoing frame is built from.
// The shared secret and session id never change; the server salt may be replaced
// with SetServerSalt, and the sequence number only moves through NextSeqNo and
// CommitSeqNo.
type Context struct {
	secret    []byte
	keyID     uint64
	role      crypto.Role
	schedule  crypto.Schedule
	sessionID int64
	salt      atomic.Int64
	seq       SequenceCounter
}

// NewContext copies secret and resolves the role's key schedule.
// Whether the secret is long enough for the schedule is checked when a frame is
// built, so the failure is reported on the send path.
func NewContext(secret []byte, cfg Config) (*Context, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty shared secret", crypto.ErrInvalidSecretLength)
	}
	schedule, err := crypto.ScheduleFor(cfg.Role)
	if err != nil {
		return nil, err
	}
	c := &Context{
		secret:    append([]byte(nil), secret...),
		keyID:     crypto.AuthKeyID(secret),
		role:      cfg.Role,
		schedule:  schedule,
		sessionID: cfg.SessionID,
	}
	c.salt.Store(cfg.ServerSalt)
	c.seq.next = cfg.SeqNo
	return c, nil
}

// DeriveMessageKey fingerprints padded with this side's slice of the secret.
func (c *Context) DeriveMessageKey(padded []byte) (crypto.MessageKey, error) {
	return crypto.DeriveMessageKey(c.secret, c.schedule.MessageKey, padded)
}

// DeriveKeyMaterial expands msgKey with this side's slices of the secret.
func (c *Context) DeriveKeyMaterial(msgKey crypto.MessageKey) (crypto.KeyMaterial, error) {
	return crypto.DeriveKeyMaterial(msgKey, c.secret, c.schedule.A, c.schedule.B)
}

// AuthKeyID returns the identifier of the shared secret.
func (c *Context) AuthKeyID() uint64 { return c.keyID }

// Role reports which side of the session this context belongs to.
func (c *Context) Role() crypto.Role { return c.role }

// Schedule returns the secret slices used by this side of the session.
func (c *Context) Schedule() crypto.Schedule { return c.schedule }

// SessionID returns the session identifier carried in every envelope.
func (c *Context) SessionID() int64 { return c.sessionID }

// ServerSalt returns the salt the next frame will carry.
func (c *Context) ServerSalt() int64 { return c.salt.Load() }

// SetServerSalt replaces the salt used by frames built after it returns.
func (c *Context) SetServerSalt(salt int64) { c.salt.Store(salt) }

// NextSeqNo returns the current sequence number and advances it.
func (c *Context) NextSeqNo() uint32 { return c.seq.Next() }

// CommitSeqNo runs fn with the current sequence number and advances it only if
// fn succeeds. Concurrent callers are serialized.
func (c *Context) CommitSeqNo(fn func(seq uint32) error) error { return c.seq.Commit(fn) }

// SeqNo returns the sequence number the next frame will carry.
func (c *Context) SeqNo() uint32 { return c.seq.Load() }
