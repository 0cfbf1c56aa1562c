package journal

import (
	"github.com/foxseedlab/voicesatellite/internal/repository"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Recorder, error) {
		return NewRecorder(do.MustInvoke[repository.Repository](i)), nil
	})
}
