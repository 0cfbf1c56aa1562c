package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/voicesatellite/internal/config"
)

type envConfig struct {
	Env                    string `env:"ENV" envDefault:"production"`
	PipelineURL            string `env:"PIPELINE_URL,required"`
	PipelineToken          string `env:"PIPELINE_TOKEN"`
	PipelineStopOnRunEnd   bool   `env:"PIPELINE_STOP_ON_RUN_END" envDefault:"true"`
	UDPIPv6Enabled         bool   `env:"UDP_IPV6_ENABLED" envDefault:"false"`
	CaptureSource          string `env:"CAPTURE_SOURCE" envDefault:"discord"`
	CaptureSampleRate      int    `env:"CAPTURE_SAMPLE_RATE" envDefault:"16000"`
	CaptureFrameMs         int    `env:"CAPTURE_FRAME_MS" envDefault:"20"`
	DiscordToken           string `env:"DISCORD_TOKEN,required"`
	DiscordGuildID         string `env:"DISCORD_GUILD_ID,required"`
	DiscordVoiceChannelID  string `env:"DISCORD_VOICE_CHANNEL_ID"`
	DiscordTextChannelID   string `env:"DISCORD_TEXT_CHANNEL_ID"`
	DatabaseURL            string `env:"DATABASE_URL"`
	NotificationWebhookURL string `env:"NOTIFICATION_WEBHOOK_URL"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                    raw.Env,
		PipelineURL:            raw.PipelineURL,
		PipelineToken:          raw.PipelineToken,
		PipelineStopOnRunEnd:   raw.PipelineStopOnRunEnd,
		UDPIPv6Enabled:         raw.UDPIPv6Enabled,
		CaptureSource:          raw.CaptureSource,
		CaptureSampleRate:      raw.CaptureSampleRate,
		CaptureFrameMs:         raw.CaptureFrameMs,
		DiscordToken:           raw.DiscordToken,
		DiscordGuildID:         raw.DiscordGuildID,
		DiscordVoiceChannelID:  raw.DiscordVoiceChannelID,
		DiscordTextChannelID:   raw.DiscordTextChannelID,
		DatabaseURL:            raw.DatabaseURL,
		NotificationWebhookURL: raw.NotificationWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
