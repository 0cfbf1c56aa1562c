package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/voicesatellite/internal/audio"
	"github.com/foxseedlab/voicesatellite/internal/discord"
)

type VoiceCaptureConfig struct {
	GuildID        string
	VoiceChannelID string
	SampleRate     int
	FrameDuration  time.Duration
	FrameBytes     int
}

// VoiceCapture turns a discord voice channel into a microphone. Every
// speaker is decoded and mixed, and one mono frame is emitted per tick
// while capturing. Ticks with no speech emit silence.
type VoiceCapture struct {
	client   discord.Client
	cfg      VoiceCaptureConfig
	newMixer audio.MixerFactory

	// joinMu serializes joining and leaving the voice channel so the network
	// round trip never holds mu.
	joinMu sync.Mutex

	mu        sync.Mutex
	sink      audio.Sink
	vc        discord.VoiceConnection
	mixer     audio.Mixer
	capturing bool
	stop      chan struct{}
	done      chan struct{}
}

func NewVoiceCapture(client discord.Client, cfg VoiceCaptureConfig, newMixer audio.MixerFactory) *VoiceCapture {
	return &VoiceCapture{
		client:   client,
		cfg:      cfg,
		newMixer: newMixer,
	}
}

func (c *VoiceCapture) RegisterSink(sink audio.Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = sink
}

func (c *VoiceCapture) Start() error {
	c.joinMu.Lock()
	defer c.joinMu.Unlock()
	if c.isCapturing() {
		return audio.ErrAlreadyCapturing
	}
	if err := c.join(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capturing {
		return audio.ErrAlreadyCapturing
	}
	c.mixer = c.newMixer(c.cfg.SampleRate)
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	c.capturing = true
	go c.run(c.sink, c.mixer, c.stop, c.done)
	return nil
}

func (c *VoiceCapture) Stop() error {
	c.mu.Lock()
	if !c.capturing {
		c.mu.Unlock()
		return nil
	}
	c.capturing = false
	stop, done, mixer := c.stop, c.done, c.mixer
	c.mixer = nil
	c.mu.Unlock()

	close(stop)
	<-done
	mixer.Close()
	return nil
}

// Shutdown leaves the voice channel.
func (c *VoiceCapture) Shutdown() error {
	if err := c.Stop(); err != nil {
		return err
	}
	c.joinMu.Lock()
	defer c.joinMu.Unlock()
	c.mu.Lock()
	vc := c.vc
	c.vc = nil
	c.mu.Unlock()
	if vc == nil {
		return nil
	}
	return vc.Disconnect()
}

// join connects to the voice channel once. Callers hold joinMu.
func (c *VoiceCapture) join() error {
	c.mu.Lock()
	joined := c.vc != nil
	c.mu.Unlock()
	if joined {
		return nil
	}

	vc, err := c.client.JoinVoiceChannel(c.cfg.GuildID, c.cfg.VoiceChannelID)
	if err != nil {
		return fmt.Errorf("join voice channel %s: %w", c.cfg.VoiceChannelID, err)
	}
	c.mu.Lock()
	c.vc = vc
	c.mu.Unlock()
	go vc.ReceiveAudio(c.onOpusPacket)
	slog.Info("joined voice channel", "guild_id", c.cfg.GuildID, "channel_id", c.cfg.VoiceChannelID)
	return nil
}

func (c *VoiceCapture) isCapturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capturing
}

func (c *VoiceCapture) onOpusPacket(speakerID string, packet []byte) {
	c.mu.Lock()
	mixer := c.mixer
	c.mu.Unlock()
	if mixer == nil {
		return
	}
	mixer.WriteOpusPacket(speakerID, packet)
}

func (c *VoiceCapture) run(sink audio.Sink, mixer audio.Mixer, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.cfg.FrameDuration)
	defer ticker.Stop()

	buf := make([]byte, c.cfg.FrameBytes)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n, err := mixer.ReadMixedPCM(buf)
			if err != nil {
				slog.Warn("failed to read mixed audio", "error", err)
				n = 0
			}
			clear(buf[n:])
			if sink != nil {
				sink.OnAudio(buf)
			}
		}
	}
}
