package config

import "testing"

func validConfig() *Config {
	return &Config{
		Env:                   "development",
		PipelineURL:           "ws://assist.local:8080/satellite",
		PipelineStopOnRunEnd:  true,
		CaptureSource:         CaptureSourceDiscord,
		CaptureSampleRate:     16000,
		CaptureFrameMs:        20,
		DiscordToken:          "token",
		DiscordGuildID:        "guild",
		DiscordVoiceChannelID: "vc",
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when required fields are missing")
	}
}

func TestValidate_PipelineURLScheme(t *testing.T) {
	cfg := validConfig()
	cfg.PipelineURL = "http://assist.local:8080/satellite"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-websocket pipeline url")
	}
}

func TestValidate_DiscordCaptureRequiresVoiceChannel(t *testing.T) {
	cfg := validConfig()
	cfg.DiscordVoiceChannelID = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when voice channel is missing for discord capture")
	}
	cfg.CaptureSource = CaptureSourceStdin
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected stdin capture without voice channel to be valid, got %v", err)
	}
}

func TestValidate_UnknownCaptureSource(t *testing.T) {
	cfg := validConfig()
	cfg.CaptureSource = "alsa"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown capture source")
	}
}

func TestValidate_InvalidSampleRate(t *testing.T) {
	cfg := validConfig()
	cfg.CaptureSampleRate = 44100
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for sample rate opus cannot decode to")
	}
}

func TestValidate_InvalidFrameMs(t *testing.T) {
	cfg := validConfig()
	cfg.CaptureFrameMs = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive frame duration")
	}
}

func TestCaptureFrameBytes(t *testing.T) {
	cfg := validConfig()
	if got := cfg.CaptureFrameBytes(); got != 640 {
		t.Fatalf("expected 640 bytes per 20ms frame at 16kHz, got %d", got)
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{Env: "development"}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development mode")
	}
	cfg.Env = "production"
	if cfg.IsDevelopment() {
		t.Fatal("expected non-development mode")
	}
}
