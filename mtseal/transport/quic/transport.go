// Package quic carries frames over a single QUIC stream using intermediate
// (length-prefixed) framing.
package quic

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	q "github.com/quic-go/quic-go"

	"github.com/TheusHen/mtseal/mtseal/protocol"
	"github.com/TheusHen/mtseal/mtseal/transport"
)

// ListenerLifetime bounds how long a listener's certificate is valid.
const ListenerLifetime = 24 * time.Hour

type Listener struct {
	inner    *q.Listener
	certHash [CertHashSize]byte
}

// Listen serves frame streams on addr under a fresh self-signed certificate.
// Clients pin it with CertHash.
func Listen(addr string) (*Listener, error) {
	id, err := newServerIdentity(ListenerLifetime)
	if err != nil {
		return nil, err
	}
	ln, err := q.ListenAddr(addr, id.tlsConfig(), &q.Config{})
	if err != nil {
		return nil, err
	}
	return &Listener{inner: ln, certHash: id.hash}, nil
}

// CertHash returns the SHA-256 of the listener's certificate.
func (l *Listener) CertHash() []byte { return append([]byte(nil), l.certHash[:]...) }

// Accept waits for a peer to connect and open its frame stream.
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	conn, err := l.inner.Accept(ctx)
	if err != nil {
		return nil, err
	}
	st, err := conn.AcceptStream(ctx)
	if err != nil {
		_ = conn.CloseWithError(1, "no stream")
		return nil, err
	}
	if err := protocol.ReadTag(st); err != nil {
		_ = conn.CloseWithError(1, "bad transport tag")
		return nil, err
	}
	return &Conn{conn: conn, stream: st}, nil
}

func (l *Listener) Addr() net.Addr { return l.inner.Addr() }

func (l *Listener) AddrString() string {
	if l.inner == nil {
		return ""
	}
	return l.inner.Addr().String()
}

func (l *Listener) Close() error { return l.inner.Close() }

// Dial connects to addr and opens the frame stream. When certHash is set the
// server certificate must hash to it.
func Dial(ctx context.Context, addr string, certHash []byte) (*Conn, error) {
	if len(certHash) != 0 && len(certHash) != CertHashSize {
		return nil, fmt.Errorf("quic: pinned hash is %d bytes, want %d", len(certHash), CertHashSize)
	}
	conn, err := q.DialAddr(ctx, addr, clientTLSConfig(certHash), &q.Config{})
	if err != nil {
		return nil, err
	}
	st, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(1, "open stream")
		return nil, err
	}
	if err := protocol.WriteTag(st); err != nil {
		_ = conn.CloseWithError(1, "write tag")
		return nil, err
	}
	return &Conn{conn: conn, stream: st}, nil
}

// Conn is one frame stream. Send and Receive may be used from different
// goroutines; concurrent Sends are serialized.
type Conn struct {
	conn   q.Connection
	stream q.Stream

	wmu sync.Mutex
	rmu sync.Mutex
}

var _ transport.Transport = (*Conn)(nil)

// Send writes one frame. The context deadline, if any, bounds the write.
func (c *Conn) Send(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if d, ok := ctx.Deadline(); ok {
		_ = c.stream.SetWriteDeadline(d)
		defer c.stream.SetWriteDeadline(time.Time{})
	}
	return protocol.WriteFrame(c.stream, frame)
}

// Receive reads the next frame.
func (c *Conn) Receive(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.rmu.Lock()
	defer c.rmu.Unlock()
	if d, ok := ctx.Deadline(); ok {
		_ = c.stream.SetReadDeadline(d)
		defer c.stream.SetReadDeadline(time.Time{})
	}
	return protocol.ReadFrame(c.stream)
}

func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

func (c *Conn) Close() error {
	_ = c.stream.Close()
	return c.conn.CloseWithError(0, "")
}
