package audio

import (
	"os"
	"time"

	"github.com/foxseedlab/voicesatellite/internal/audio"
	"github.com/foxseedlab/voicesatellite/internal/config"
	"github.com/foxseedlab/voicesatellite/internal/discord"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.ProvideValue(injector, audio.MixerFactory(NewOpusMixer))
	do.Provide(injector, func(i do.Injector) (audio.Capture, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.CaptureSource == config.CaptureSourceStdin {
			return NewReaderCapture(os.Stdin, cfg.CaptureFrameBytes()), nil
		}
		return NewVoiceCapture(
			do.MustInvoke[discord.Client](i),
			VoiceCaptureConfig{
				GuildID:        cfg.DiscordGuildID,
				VoiceChannelID: cfg.DiscordVoiceChannelID,
				SampleRate:     cfg.CaptureSampleRate,
				FrameDuration:  time.Duration(cfg.CaptureFrameMs) * time.Millisecond,
				FrameBytes:     cfg.CaptureFrameBytes(),
			},
			do.MustInvoke[audio.MixerFactory](i),
		), nil
	})
}
