package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// MaxFrameSize limits a single frame on the wire.
	MaxFrameSize = 1 << 24 // 16 MiB
)

// IntermediateTag opens a stream using length-prefixed framing.
var IntermediateTag = [4]byte{0xee, 0xee, 0xee, 0xee}

var (
	ErrFrameTooLarge    = errors.New("protocol: frame too large")
	ErrEmptyFrame       = errors.New("protocol: empty frame")
	ErrUnknownTransport = errors.New("protocol: unknown transport tag")
)

// WriteTag writes the stream header announcing intermediate framing.
func WriteTag(w io.Writer) error {
	_, err := w.Write(IntermediateTag[:])
	return err
}

// ReadTag consumes and checks the stream header.
func ReadTag(r io.Reader) error {
	var tag [4]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return err
	}
	if tag != IntermediateTag {
		return fmt.Errorf("%w: %x", ErrUnknownTransport, tag)
	}
	return nil
}

// WriteFrame writes one frame with intermediate framing.
// Format:
//
//	4 bytes: frame length (little endian)
//	N bytes: frame
func WriteFrame(w io.Writer, frame []byte) error {
	if len(frame) == 0 {
		return ErrEmptyFrame
	}
	if len(frame) > MaxFrameSize {
		return ErrFrameTooLarge
	}
	buf := make([]byte, 4+len(frame))
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(frame)))
	copy(buf[4:], frame)
	_, err := w.Write(buf)
	return err
}

// ReadFrame reads one frame written by WriteFrame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n == 0 {
		return nil, ErrEmptyFrame
	}
	if n > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d", ErrFrameTooLarge, n)
	}
	frame := make([]byte, n)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, err
	}
	return frame, nil
}
