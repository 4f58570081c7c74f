// Package capture records built frames into an LZ4-compressed stream and reads
// them back. The decompressed stream is an ordinary intermediate-framed stream,
// so captures can be replayed or diffed against frames from other
// implementations.
package capture

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/TheusHen/mtseal/mtseal/protocol"
	"github.com/TheusHen/mtseal/mtseal/transport"
)

var ErrClosed = errors.New("capture: recorder closed")

// CompressionLevel controls the speed/ratio tradeoff.
type CompressionLevel int

const (
	CompressionFast    CompressionLevel = iota // Fastest, lower ratio
	CompressionDefault                         // Balanced
	CompressionBest                            // Best ratio, slower
)

func (l CompressionLevel) option() lz4.Option {
	switch l {
	case CompressionFast:
		return lz4.CompressionLevelOption(lz4.Fast)
	case CompressionBest:
		return lz4.CompressionLevelOption(lz4.Level9)
	default:
		return lz4.CompressionLevelOption(lz4.Level4)
	}
}

// Recorder is a Transport that appends every frame to a capture and then
// forwards it to next, if set.
type Recorder struct {
	mu     sync.Mutex
	zw     *lz4.Writer
	next   transport.Transport
	count  int
	closed bool
}

var _ transport.Transport = (*Recorder)(nil)

// NewRecorder starts a capture on w. Close must be called to flush it; w itself
// is left open.
func NewRecorder(w io.Writer, level CompressionLevel, next transport.Transport) (*Recorder, error) {
	zw := lz4.NewWriter(w)
	if err := zw.Apply(level.option()); err != nil {
		return nil, err
	}
	if err := protocol.WriteTag(zw); err != nil {
		return nil, err
	}
	return &Recorder{zw: zw, next: next}, nil
}

// Send records frame and forwards it. A frame is recorded even when
// forwarding fails.
func (r *Recorder) Send(ctx context.Context, frame []byte) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	err := protocol.WriteFrame(r.zw, frame)
	if err == nil {
		r.count++
	}
	r.mu.Unlock()
	if err != nil {
		return err
	}
	if r.next == nil {
		return nil
	}
	return r.next.Send(ctx, frame)
}

// Count returns the number of frames recorded.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Close flushes the compressed stream.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.zw.Close()
}

// Reader iterates over the frames of a capture.
type Reader struct {
	zr *lz4.Reader
}

func NewReader(r io.Reader) (*Reader, error) {
	zr := lz4.NewReader(r)
	if err := protocol.ReadTag(zr); err != nil {
		return nil, err
	}
	return &Reader{zr: zr}, nil
}

// Next returns the next frame, or io.EOF after the last one.
func (r *Reader) Next() ([]byte, error) {
	return protocol.ReadFrame(r.zr)
}

// ReadAll returns every frame in a capture.
func ReadAll(r io.Reader) ([][]byte, error) {
	cr, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	var frames [][]byte
	for {
		f, err := cr.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
}
