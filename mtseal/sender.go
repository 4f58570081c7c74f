package mtseal

import (
	"context"
	"errors"
	"io"

	"github.com/TheusHen/mtseal/mtseal/crypto"
	"github.com/TheusHen/mtseal/mtseal/observability"
	"github.com/TheusHen/mtseal/mtseal/protocol"
	"github.com/TheusHen/mtseal/mtseal/session"
	"github.com/TheusHen/mtseal/mtseal/transport"
	"github.com/TheusHen/mtseal/mtseal/transport/quic"
)

var (
	ErrInvalidConfiguration  = crypto.ErrInvalidConfiguration
	ErrInvalidSecretLength   = crypto.ErrInvalidSecretLength
	ErrInvalidBlockAlignment = crypto.ErrInvalidBlockAlignment

	ErrNoTransport = errors.New("mtseal: sender has no transport")
)

// Sender builds frames for one connection and hands them to its transport.
// It is safe for concurrent use; frames reach the transport in the order
// their Send calls return from building, which may differ from sequence
// order when sends race.
type Sender struct {
	sc        *session.Context
	builder   *protocol.Builder
	transport transport.Transport
	observer  observability.FrameObserver
}

func NewSender(sc *session.Context, t transport.Transport, cfg protocol.BuilderConfig) (*Sender, error) {
	if sc == nil {
		return nil, errors.New("mtseal: nil session context")
	}
	if t == nil {
		return nil, ErrNoTransport
	}
	b, err := protocol.NewBuilder(cfg)
	if err != nil {
		return nil, err
	}
	return &Sender{
		sc:        sc,
		builder:   b,
		transport: t,
		observer:  b.Config().Observer,
	}, nil
}

// Dial connects to a QUIC frame listener at addr and returns a Sender over it.
// certHash pins the listener's certificate; see quic.Listener.CertHash.
// Close releases the connection.
func Dial(ctx context.Context, addr string, certHash []byte, sc *session.Context, cfg protocol.BuilderConfig) (*Sender, error) {
	conn, err := quic.Dial(ctx, addr, certHash)
	if err != nil {
		return nil, err
	}
	s, err := NewSender(sc, conn, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// Context returns the session state frames are built from.
func (s *Sender) Context() *session.Context { return s.sc }

// Send builds one frame from payload and hands it to the transport.
// A build failure leaves the sequence number untouched. A transport failure
// does not: the number was spent on a frame that may have been partly written.
func (s *Sender) Send(ctx context.Context, payload []byte) error {
	frame, err := s.builder.Build(s.sc, payload)
	if err != nil {
		s.observer.Send(observability.SendResultBuildError)
		return err
	}
	if err := s.transport.Send(ctx, frame); err != nil {
		s.observer.Send(observability.SendResultTransportError)
		return err
	}
	s.observer.Send(observability.SendResultOK)
	return nil
}

// Close closes the transport if it can be closed.
func (s *Sender) Close() error {
	if c, ok := s.transport.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
