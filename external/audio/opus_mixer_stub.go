//go:build !opus

package audio

import (
	"log/slog"

	"github.com/foxseedlab/voicesatellite/internal/audio"
)

// Builds without the opus tag cannot decode discord voice; the mixer stays
// silent so the satellite still streams zeroed frames.
type noopMixer struct{}

func NewOpusMixer(sampleRate int) audio.Mixer {
	slog.Warn("built without opus support; discord audio will be silent", "sample_rate", sampleRate)
	return &noopMixer{}
}

func (m *noopMixer) WriteOpusPacket(_ string, _ []byte) {}

func (m *noopMixer) ReadMixedPCM(_ []byte) (int, error) {
	return 0, nil
}

func (m *noopMixer) Close() {}
