package protocol

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/TheusHen/mtseal/mtseal/crypto"
	"github.com/TheusHen/mtseal/mtseal/observability"
	"github.com/TheusHen/mtseal/mtseal/session"
)

// BuildError reports the stage at which frame construction failed.
type BuildError struct {
	Stage observability.Stage
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("protocol: %s: %v", e.Stage, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// BuilderConfig configures frame construction.
type BuilderConfig struct {
	Padding crypto.PaddingPolicy
	Source  FingerprintSource
	// MessageIDs supplies message ids. When nil each role gets its own
	// MonotonicGenerator on the system clock.
	MessageIDs session.MessageIDGenerator
	// Rand supplies padding. It must be safe for concurrent use when the
	// builder is shared.
	Rand     io.Reader
	Observer observability.FrameObserver
}

func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		Padding:  crypto.DefaultPaddingPolicy(),
		Source:   FingerprintPlaintextBased,
		Rand:     rand.Reader,
		Observer: observability.NoopFrameObserver,
	}
}

// Builder turns payloads into encrypted frames for a session.Context.
// A Builder holds no per-message state and may be shared.
type Builder struct {
	cfg          BuilderConfig
	initiatorIDs session.MessageIDGenerator
	responderIDs session.MessageIDGenerator
}

func NewBuilder(cfg BuilderConfig) (*Builder, error) {
	def := DefaultBuilderConfig()
	if cfg.Padding == (crypto.PaddingPolicy{}) {
		cfg.Padding = def.Padding
	}
	if cfg.Source == 0 {
		cfg.Source = def.Source
	}
	if cfg.Rand == nil {
		cfg.Rand = def.Rand
	}
	if cfg.Observer == nil {
		cfg.Observer = def.Observer
	}
	if err := cfg.Padding.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Source {
	case FingerprintPlaintextBased, FingerprintCiphertextBased:
	default:
		return nil, fmt.Errorf("%w: fingerprint source %d", crypto.ErrInvalidConfiguration, cfg.Source)
	}

	b := &Builder{cfg: cfg}
	if cfg.MessageIDs != nil {
		b.initiatorIDs = cfg.MessageIDs
		b.responderIDs = cfg.MessageIDs
	} else {
		b.initiatorIDs = session.NewMonotonicGenerator(nil, crypto.RoleInitiator)
		b.responderIDs = session.NewMonotonicGenerator(nil, crypto.RoleResponder)
	}
	return b, nil
}

// Config returns the effective configuration.
func (b *Builder) Config() BuilderConfig { return b.cfg }

// Build encrypts payload for c and returns the complete frame.
// The sequence number of c advances exactly once if and only if a frame is
// returned.
func (b *Builder) Build(c *session.Context, payload []byte) ([]byte, error) {
	start := time.Now()
	var (
		frame []byte
		err   error
	)
	switch b.cfg.Source {
	case FingerprintCiphertextBased:
		frame, err = b.buildCiphertextBased(c, payload)
	default:
		frame, err = b.buildPlaintextBased(c, payload)
	}
	if err != nil {
		var be *BuildError
		if errors.As(err, &be) {
			b.cfg.Observer.BuildFailed(be.Stage)
		}
		return nil, err
	}
	b.cfg.Observer.FrameBuilt(b.cfg.Source.String(), len(frame), time.Since(start))
	return frame, nil
}

func (b *Builder) messageIDs(role crypto.Role) session.MessageIDGenerator {
	if role == crypto.RoleResponder {
		return b.responderIDs
	}
	return b.initiatorIDs
}

func (b *Builder) header(c *session.Context, seq uint32) Header {
	return Header{
		Salt:      c.ServerSalt(),
		SessionID: c.SessionID(),
		MessageID: b.messageIDs(c.Role()).NextMessageID(),
		SeqNo:     seq,
	}
}

// seal fingerprints and encrypts plain, which must already be block aligned.
func (b *Builder) seal(c *session.Context, plain []byte) (crypto.MessageKey, []byte, error) {
	mk, err := c.DeriveMessageKey(plain)
	if err != nil {
		return mk, nil, &BuildError{Stage: observability.StageMessageKey, Err: err}
	}
	km, err := c.DeriveKeyMaterial(mk)
	if err != nil {
		return mk, nil, &BuildError{Stage: observability.StageKeyMaterial, Err: err}
	}
	defer km.Zero()

	ct, err := crypto.EncryptIGE(km, plain)
	if err != nil {
		return mk, nil, &BuildError{Stage: observability.StageEncrypt, Err: err}
	}
	return mk, ct, nil
}

func (b *Builder) buildPlaintextBased(c *session.Context, payload []byte) ([]byte, error) {
	padded, err := b.cfg.Padding.Pad(payload, b.cfg.Rand)
	if err != nil {
		return nil, &BuildError{Stage: observability.StagePad, Err: err}
	}
	mk, ct, err := b.seal(c, padded)
	if err != nil {
		return nil, err
	}

	var frame []byte
	err = c.CommitSeqNo(func(seq uint32) error {
		f, err := BuildFrame(c.AuthKeyID(), mk, ct, b.header(c, seq), b.cfg.Padding, b.cfg.Rand)
		if err != nil {
			return &BuildError{Stage: observability.StageFrame, Err: err}
		}
		frame = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return frame, nil
}

func (b *Builder) buildCiphertextBased(c *session.Context, payload []byte) ([]byte, error) {
	var frame []byte
	err := c.CommitSeqNo(func(seq uint32) error {
		env, err := EncodeEnvelope(b.header(c, seq), payload, b.cfg.Padding, b.cfg.Rand)
		if err != nil {
			return &BuildError{Stage: observability.StagePad, Err: err}
		}
		mk, ct, err := b.seal(c, env)
		if err != nil {
			return err
		}
		frame = EncodeOuter(c.AuthKeyID(), mk, ct)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return frame, nil
}
