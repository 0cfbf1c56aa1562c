package bot

import (
	"github.com/foxseedlab/voicesatellite/internal/config"
	"github.com/foxseedlab/voicesatellite/internal/discord"
	"github.com/foxseedlab/voicesatellite/internal/journal"
	"github.com/foxseedlab/voicesatellite/internal/session"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Announcer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewAnnouncer(do.MustInvoke[discord.Client](i), cfg.DiscordTextChannelID), nil
	})
	do.Provide(injector, func(i do.Injector) (*CommandHandler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		controller, err := do.Invoke[*session.Controller](i)
		if err != nil {
			return nil, err
		}
		recorder, err := do.Invoke[*journal.Recorder](i)
		if err != nil {
			return nil, err
		}
		return NewCommandHandler(cfg.DiscordGuildID, controller, recorder), nil
	})
}
