package quic

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func TestFramesOverLoopback(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ln, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	addr := ln.AddrString()
	if addr == "" {
		t.Fatalf("expected listener addr")
	}

	frames := [][]byte{
		bytes.Repeat([]byte{1}, 120),
		bytes.Repeat([]byte{2}, 4096),
		bytes.Repeat([]byte{3}, 104),
	}

	type result struct {
		got [][]byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := ln.Accept(ctx)
		if err != nil {
			done <- result{err: err}
			return
		}
		defer conn.Close()
		var got [][]byte
		for range frames {
			f, err := conn.Receive(ctx)
			if err != nil {
				done <- result{err: err}
				return
			}
			got = append(got, f)
		}
		done <- result{got: got}
	}()

	conn, err := Dial(ctx, addr, ln.CertHash())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	for _, f := range frames {
		if err := conn.Send(ctx, f); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	res := <-done
	if res.err != nil {
		t.Fatalf("server: %v", res.err)
	}
	for i := range frames {
		if !bytes.Equal(res.got[i], frames[i]) {
			t.Fatalf("frame %d mismatch", i)
		}
	}
}

func TestSendCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var c Conn
	if err := c.Send(ctx, []byte{1}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDialRejectsWrongPin(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ln, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	pin := ln.CertHash()
	if len(pin) != CertHashSize {
		t.Fatalf("CertHash length %d", len(pin))
	}
	pin[0] ^= 0xff
	if conn, err := Dial(ctx, ln.AddrString(), pin); err == nil {
		conn.Close()
		t.Fatalf("Dial accepted a certificate that does not match the pin")
	}
	if _, err := Dial(ctx, ln.AddrString(), pin[:8]); err == nil {
		t.Fatalf("Dial accepted a truncated pin")
	}
}

func TestClientConfigPin(t *testing.T) {
	id, err := newServerIdentity(time.Hour)
	if err != nil {
		t.Fatalf("newServerIdentity: %v", err)
	}
	der := id.cert.Certificate[0]

	if err := clientTLSConfig(id.hash[:]).VerifyPeerCertificate([][]byte{der}, nil); err != nil {
		t.Fatalf("matching pin: %v", err)
	}
	other := id.hash
	other[31] ^= 1
	if err := clientTLSConfig(other[:]).VerifyPeerCertificate([][]byte{der}, nil); !errors.Is(err, ErrCertificateMismatch) {
		t.Fatalf("mismatched pin: %v", err)
	}
	if err := clientTLSConfig(nil).VerifyPeerCertificate([][]byte{der}, nil); err != nil {
		t.Fatalf("no pin: %v", err)
	}
	if len(clientTLSConfig(nil).Certificates) != 0 {
		t.Fatalf("client config carries a certificate")
	}
}
