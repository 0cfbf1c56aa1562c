package audio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/foxseedlab/voicesatellite/internal/audio"
	"github.com/foxseedlab/voicesatellite/internal/discord"
)

type mockVoiceConnection struct {
	mu           sync.Mutex
	disconnected bool
	packets      chan [2]string
}

func (v *mockVoiceConnection) Disconnect() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.disconnected {
		v.disconnected = true
		close(v.packets)
	}
	return nil
}

func (v *mockVoiceConnection) ReceiveAudio(callback func(userID string, opusPacket []byte)) {
	for p := range v.packets {
		callback(p[0], []byte(p[1]))
	}
}

type mockDiscordClient struct {
	mu      sync.Mutex
	joins   int
	joinErr error
	vc      *mockVoiceConnection

	// When set, JoinVoiceChannel signals joining and waits for release.
	joining chan struct{}
	release chan struct{}
}

func (c *mockDiscordClient) Connect(context.Context) error { return nil }
func (c *mockDiscordClient) Close() error                  { return nil }
func (c *mockDiscordClient) SendChannelMessage(string, string) error {
	return nil
}
func (c *mockDiscordClient) RegisterSlashCommandHandler(func(discord.SlashCommandEvent)) {}
func (c *mockDiscordClient) UpsertGuildSlashCommands(string, []discord.SlashCommandDefinition) error {
	return nil
}
func (c *mockDiscordClient) GetBotUserID() (string, error) { return "bot", nil }

func (c *mockDiscordClient) JoinVoiceChannel(_, _ string) (discord.VoiceConnection, error) {
	if c.release != nil {
		close(c.joining)
		<-c.release
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joins++
	if c.joinErr != nil {
		return nil, c.joinErr
	}
	return c.vc, nil
}

// scriptedMixer returns one queued frame per written packet.
type scriptedMixer struct {
	mu      sync.Mutex
	pending [][]byte
	closed  bool
}

func (m *scriptedMixer) WriteOpusPacket(_ string, packet []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, packet)
}

func (m *scriptedMixer) ReadMixedPCM(buf []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return 0, nil
	}
	n := copy(buf, m.pending[0])
	m.pending = m.pending[1:]
	return n, nil
}

func (m *scriptedMixer) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

type collectingSink struct {
	mu     sync.Mutex
	frames [][]byte
}

func (s *collectingSink) OnAudio(buf []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, append([]byte(nil), buf...))
}

func (s *collectingSink) snapshot() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.frames...)
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func newTestVoiceCapture(client *mockDiscordClient) (*VoiceCapture, *[]*scriptedMixer) {
	var mixers []*scriptedMixer
	var mu sync.Mutex
	capture := NewVoiceCapture(client, VoiceCaptureConfig{
		GuildID:        "guild-1",
		VoiceChannelID: "vc-1",
		SampleRate:     16000,
		FrameDuration:  5 * time.Millisecond,
		FrameBytes:     4,
	}, func(int) audio.Mixer {
		mu.Lock()
		defer mu.Unlock()
		m := &scriptedMixer{}
		mixers = append(mixers, m)
		return m
	})
	return capture, &mixers
}

func TestVoiceCapture_EmitsSilenceAndMixedFrames(t *testing.T) {
	client := &mockDiscordClient{vc: &mockVoiceConnection{packets: make(chan [2]string, 4)}}
	capture, _ := newTestVoiceCapture(client)
	sink := &collectingSink{}
	capture.RegisterSink(sink)

	if err := capture.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer capture.Shutdown()

	client.vc.packets <- [2]string{"alice", "\x01\x02"}
	waitUntil(t, time.Second, func() bool {
		for _, f := range sink.snapshot() {
			if f[0] == 1 && f[1] == 2 {
				return true
			}
		}
		return false
	})

	for _, f := range sink.snapshot() {
		if len(f) != 4 {
			t.Fatalf("frame length = %d, want 4", len(f))
		}
		if f[0] == 1 && (f[2] != 0 || f[3] != 0) {
			t.Fatalf("short mixer read must be zero padded, got %v", f)
		}
	}
}

func TestVoiceCapture_StartTwiceAndStopStopsFrames(t *testing.T) {
	client := &mockDiscordClient{vc: &mockVoiceConnection{packets: make(chan [2]string)}}
	capture, mixers := newTestVoiceCapture(client)
	sink := &collectingSink{}
	capture.RegisterSink(sink)

	if err := capture.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := capture.Start(); !errors.Is(err, audio.ErrAlreadyCapturing) {
		t.Fatalf("expected ErrAlreadyCapturing, got %v", err)
	}
	waitUntil(t, time.Second, func() bool { return len(sink.snapshot()) > 0 })

	if err := capture.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	after := len(sink.snapshot())
	time.Sleep(30 * time.Millisecond)
	if got := len(sink.snapshot()); got != after {
		t.Fatalf("frames delivered after stop: %d -> %d", after, got)
	}
	if !(*mixers)[0].closed {
		t.Fatal("expected mixer to be closed on stop")
	}
	if err := capture.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}

	if err := capture.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if client.joins != 1 {
		t.Fatalf("expected the voice channel to be joined once, got %d", client.joins)
	}
	if err := capture.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !client.vc.disconnected {
		t.Fatal("expected shutdown to leave the voice channel")
	}
}

func TestVoiceCapture_JoinFailure(t *testing.T) {
	client := &mockDiscordClient{joinErr: errors.New("missing permission")}
	capture, _ := newTestVoiceCapture(client)

	if err := capture.Start(); err == nil {
		t.Fatal("expected join failure to be returned")
	}
	if err := capture.Stop(); err != nil {
		t.Fatalf("stop after failed start: %v", err)
	}
}

func TestVoiceCapture_SlowJoinDoesNotBlockCallbacks(t *testing.T) {
	client := &mockDiscordClient{
		vc:      &mockVoiceConnection{packets: make(chan [2]string)},
		joining: make(chan struct{}),
		release: make(chan struct{}),
	}
	capture, _ := newTestVoiceCapture(client)

	started := make(chan error, 1)
	go func() { started <- capture.Start() }()
	<-client.joining

	returned := make(chan struct{})
	go func() {
		capture.onOpusPacket("alice", []byte{1})
		capture.RegisterSink(&collectingSink{})
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("callbacks blocked while joining the voice channel")
	}

	close(client.release)
	if err := <-started; err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := capture.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
