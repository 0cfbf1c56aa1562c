package audio

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/foxseedlab/voicesatellite/internal/audio"
)

var ErrSourceClosed = errors.New("audio: capture source closed")

// ReaderCapture reads raw s16le mono frames from r, typically stdin fed by
// a recorder process. Reads are paced by the producer. Frames read while not
// capturing are discarded so the producer never blocks.
type ReaderCapture struct {
	r          io.Reader
	frameBytes int

	startOnce sync.Once
	sink      atomic.Pointer[sinkRef]
	capturing atomic.Bool
	closed    atomic.Bool
}

type sinkRef struct {
	sink audio.Sink
}

func NewReaderCapture(r io.Reader, frameBytes int) *ReaderCapture {
	return &ReaderCapture{r: r, frameBytes: frameBytes}
}

func (c *ReaderCapture) RegisterSink(sink audio.Sink) {
	c.sink.Store(&sinkRef{sink: sink})
}

func (c *ReaderCapture) Start() error {
	if c.closed.Load() {
		return ErrSourceClosed
	}
	if !c.capturing.CompareAndSwap(false, true) {
		return audio.ErrAlreadyCapturing
	}
	c.startOnce.Do(func() { go c.readLoop() })
	return nil
}

func (c *ReaderCapture) Stop() error {
	c.capturing.Store(false)
	return nil
}

func (c *ReaderCapture) readLoop() {
	buf := make([]byte, c.frameBytes)
	for {
		if _, err := io.ReadFull(c.r, buf); err != nil {
			c.closed.Store(true)
			c.capturing.Store(false)
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				slog.Warn("capture source reached end of stream")
			} else {
				slog.Error("capture source read failed", "error", err)
			}
			return
		}
		if !c.capturing.Load() {
			continue
		}
		if ref := c.sink.Load(); ref != nil && ref.sink != nil {
			ref.sink.OnAudio(buf)
		}
	}
}
