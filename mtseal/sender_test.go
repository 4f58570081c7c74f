package mtseal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TheusHen/mtseal/mtseal/crypto"
	"github.com/TheusHen/mtseal/mtseal/observability"
	"github.com/TheusHen/mtseal/mtseal/protocol"
	"github.com/TheusHen/mtseal/mtseal/session"
	"github.com/TheusHen/mtseal/mtseal/transport"
	"github.com/TheusHen/mtseal/mtseal/transport/quic"
)

func testContext(t *testing.T, secretLen int) *session.Context {
	t.Helper()
	secret := make([]byte, secretLen)
	for i := range secret {
		secret[i] = byte(i * 3)
	}
	sc, err := session.NewContext(secret, session.Config{Role: crypto.RoleInitiator, SessionID: 7, ServerSalt: 9})
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return sc
}

type sink struct {
	mu     sync.Mutex
	frames [][]byte
	err    error
}

func (s *sink) Send(_ context.Context, f []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, f)
	return nil
}

type countingObserver struct {
	mu      sync.Mutex
	results map[observability.SendResult]int
}

func (o *countingObserver) FrameBuilt(string, int, time.Duration) {}
func (o *countingObserver) BuildFailed(observability.Stage)       {}
func (o *countingObserver) Send(r observability.SendResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results[r]++
}

func TestSenderSend(t *testing.T) {
	sc := testContext(t, crypto.AuthKeySize)
	out := &sink{}
	obs := &countingObserver{results: map[observability.SendResult]int{}}
	s, err := NewSender(sc, out, protocol.BuilderConfig{Observer: obs})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Send(context.Background(), []byte("ping")))
	}
	require.Len(t, out.frames, 3)
	require.Equal(t, uint32(3), sc.SeqNo())
	require.Equal(t, 3, obs.results[observability.SendResultOK])

	for i, f := range out.frames {
		keyID, _, env, err := protocol.DecodeOuter(f)
		require.NoError(t, err)
		require.Equal(t, sc.AuthKeyID(), keyID)
		h, _, err := protocol.DecodeEnvelope(env)
		require.NoError(t, err)
		require.Equal(t, uint32(i), h.SeqNo)
	}
}

func TestSenderShortSecret(t *testing.T) {
	sc := testContext(t, 64)
	out := &sink{}
	obs := &countingObserver{results: map[observability.SendResult]int{}}
	s, err := NewSender(sc, out, protocol.BuilderConfig{Observer: obs})
	require.NoError(t, err)

	err = s.Send(context.Background(), []byte("ping"))
	require.ErrorIs(t, err, ErrInvalidSecretLength)
	require.Empty(t, out.frames)
	require.Equal(t, uint32(0), sc.SeqNo())
	require.Equal(t, 1, obs.results[observability.SendResultBuildError])
}

func TestSenderTransportFailureKeepsSeqNo(t *testing.T) {
	errDown := errors.New("link down")
	sc := testContext(t, crypto.AuthKeySize)
	s, err := NewSender(sc, &sink{err: errDown}, protocol.DefaultBuilderConfig())
	require.NoError(t, err)

	require.ErrorIs(t, s.Send(context.Background(), []byte("ping")), errDown)
	require.Equal(t, uint32(1), sc.SeqNo())
}

func TestNewSenderRejects(t *testing.T) {
	sc := testContext(t, crypto.AuthKeySize)
	if _, err := NewSender(sc, nil, protocol.DefaultBuilderConfig()); !errors.Is(err, ErrNoTransport) {
		t.Fatalf("nil transport: %v", err)
	}
	cfg := protocol.DefaultBuilderConfig()
	cfg.Padding.Min = 4
	if _, err := NewSender(sc, transport.Func(func(context.Context, []byte) error { return nil }), cfg); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("bad padding: %v", err)
	}
}

func TestSenderConcurrent(t *testing.T) {
	const n = 200
	sc := testContext(t, crypto.AuthKeySize)
	out := &sink{}
	s, err := NewSender(sc, out, protocol.BuilderConfig{Source: protocol.FingerprintPlaintextBased})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Send(context.Background(), []byte("pipelined")); err != nil {
				t.Errorf("Send: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, uint32(n), sc.SeqNo())
	seen := map[uint32]bool{}
	for _, f := range out.frames {
		_, _, env, err := protocol.DecodeOuter(f)
		require.NoError(t, err)
		h, _, err := protocol.DecodeEnvelope(env)
		require.NoError(t, err)
		require.False(t, seen[h.SeqNo], "duplicate seq %d", h.SeqNo)
		seen[h.SeqNo] = true
	}
	require.Len(t, seen, n)
}

func TestDialSendOverQUIC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ln, err := quic.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	got := make(chan []byte, 1)
	errCh := make(chan error, 1)
	go func() {
		conn, err := ln.Accept(ctx)
		if err != nil {
			errCh <- err
			return
		}
		defer conn.Close()
		f, err := conn.Receive(ctx)
		if err != nil {
			errCh <- err
			return
		}
		got <- f
	}()

	sc := testContext(t, crypto.AuthKeySize)
	s, err := Dial(ctx, ln.AddrString(), ln.CertHash(), sc, protocol.DefaultBuilderConfig())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Send(ctx, []byte("over quic")))
	select {
	case f := <-got:
		keyID, _, _, err := protocol.DecodeOuter(f)
		require.NoError(t, err)
		require.Equal(t, sc.AuthKeyID(), keyID)
	case err := <-errCh:
		t.Fatalf("server: %v", err)
	}
}
