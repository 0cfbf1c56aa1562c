package pipeline

import (
	"github.com/foxseedlab/voicesatellite/internal/config"
	"github.com/foxseedlab/voicesatellite/internal/pipeline"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (pipeline.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewWebSocketClient(WebSocketConfig{
			URL:        cfg.PipelineURL,
			Token:      cfg.PipelineToken,
			SampleRate: cfg.CaptureSampleRate,
		}), nil
	})
}
