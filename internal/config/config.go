package config

import (
	"fmt"
	"net/url"
)

const (
	CaptureSourceDiscord = "discord"
	CaptureSourceStdin   = "stdin"
)

type Config struct {
	Env                    string
	PipelineURL            string
	PipelineToken          string
	PipelineStopOnRunEnd   bool
	UDPIPv6Enabled         bool
	CaptureSource          string
	CaptureSampleRate      int
	CaptureFrameMs         int
	DiscordToken           string
	DiscordGuildID         string
	DiscordVoiceChannelID  string
	DiscordTextChannelID   string
	DatabaseURL            string
	NotificationWebhookURL string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	u, err := url.Parse(c.PipelineURL)
	if err != nil {
		return fmt.Errorf("PIPELINE_URL is invalid: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("PIPELINE_URL must use ws or wss scheme, got %q", u.Scheme)
	}
	switch c.CaptureSource {
	case CaptureSourceDiscord:
		if c.DiscordVoiceChannelID == "" {
			return fmt.Errorf("DISCORD_VOICE_CHANNEL_ID is required when CAPTURE_SOURCE=discord")
		}
	case CaptureSourceStdin:
	default:
		return fmt.Errorf("CAPTURE_SOURCE must be %q or %q, got %q", CaptureSourceDiscord, CaptureSourceStdin, c.CaptureSource)
	}
	if !isOpusSampleRate(c.CaptureSampleRate) {
		return fmt.Errorf("CAPTURE_SAMPLE_RATE must be one of 8000, 12000, 16000, 24000, 48000, got %d", c.CaptureSampleRate)
	}
	if c.CaptureFrameMs <= 0 {
		return fmt.Errorf("CAPTURE_FRAME_MS must be positive, got %d", c.CaptureFrameMs)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "PIPELINE_URL", value: c.PipelineURL},
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
		{name: "DISCORD_GUILD_ID", value: c.DiscordGuildID},
	}
}

// CaptureFrameBytes is the size of one mono s16le capture frame.
func (c *Config) CaptureFrameBytes() int {
	return c.CaptureSampleRate * c.CaptureFrameMs / 1000 * 2
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Discord voice is opus, so capture is restricted to rates opus can decode to.
func isOpusSampleRate(rate int) bool {
	switch rate {
	case 8000, 12000, 16000, 24000, 48000:
		return true
	default:
		return false
	}
}
