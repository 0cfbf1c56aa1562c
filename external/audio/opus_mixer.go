//go:build opus

package audio

import (
	"log/slog"
	"sync"

	"github.com/foxseedlab/voicesatellite/internal/audio"
	"github.com/hraban/opus"
)

const (
	mixerChannels = 1
	// 120ms is the longest frame opus allows.
	maxFrameMs = 120
)

type OpusMixer struct {
	mu         sync.Mutex
	sampleRate int
	decoders   map[string]*opus.Decoder
	queues     map[string]*sampleQueue
	closed     bool
}

func NewOpusMixer(sampleRate int) audio.Mixer {
	return &OpusMixer{
		sampleRate: sampleRate,
		decoders:   make(map[string]*opus.Decoder),
		queues:     make(map[string]*sampleQueue),
	}
}

func (m *OpusMixer) WriteOpusPacket(speakerID string, packet []byte) {
	if len(packet) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	dec, ok := m.decoders[speakerID]
	if !ok {
		var err error
		dec, err = opus.NewDecoder(m.sampleRate, mixerChannels)
		if err != nil {
			slog.Warn("failed to create opus decoder", "speaker_id", speakerID, "error", err)
			return
		}
		m.decoders[speakerID] = dec
		m.queues[speakerID] = newSampleQueue(m.sampleRate)
	}
	pcm := make([]int16, m.sampleRate*maxFrameMs/1000*mixerChannels)
	n, err := dec.Decode(packet, pcm)
	if err != nil {
		slog.Debug("dropping undecodable opus packet", "speaker_id", speakerID, "error", err)
		return
	}
	if n > 0 {
		m.queues[speakerID].push(pcm[:n*mixerChannels])
	}
}

func (m *OpusMixer) ReadMixedPCM(buf []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || !hasQueuedSamples(m.queues) {
		return 0, nil
	}
	mixed := make([]int16, len(buf)/2)
	mixQueuedSamples(m.queues, mixed)
	return writePCM(buf, mixed), nil
}

func (m *OpusMixer) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.decoders = nil
	m.queues = nil
}
