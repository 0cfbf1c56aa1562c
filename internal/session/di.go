package session

import (
	"github.com/foxseedlab/voicesatellite/internal/audio"
	"github.com/foxseedlab/voicesatellite/internal/config"
	"github.com/foxseedlab/voicesatellite/internal/notify"
	"github.com/foxseedlab/voicesatellite/internal/pipeline"
	"github.com/foxseedlab/voicesatellite/internal/transport"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Controller, error) {
		cfg := do.MustInvoke[*config.Config](i)
		capture := do.MustInvoke[audio.Capture](i)
		opener := do.MustInvoke[transport.Opener](i)
		pc := do.MustInvoke[pipeline.Client](i)
		triggers := do.MustInvoke[notify.Triggers](i)
		return NewController(Options{
			IPv6Enabled:  cfg.UDPIPv6Enabled,
			StopOnRunEnd: cfg.PipelineStopOnRunEnd,
		}, capture, opener, pc, triggers)
	})
}
