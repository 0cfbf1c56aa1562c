package audio

// Mixer decodes opus packets from several speakers and mixes them into a
// single mono PCM stream.
type Mixer interface {
	WriteOpusPacket(speakerID string, packet []byte)
	// ReadMixedPCM fills buf with at most one frame of little-endian s16
	// samples and reports how many bytes were written. Zero means nobody
	// spoke since the last read.
	ReadMixedPCM(buf []byte) (int, error)
	Close()
}

type MixerFactory func(sampleRate int) Mixer
