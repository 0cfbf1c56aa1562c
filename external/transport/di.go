package transport

import (
	"github.com/foxseedlab/voicesatellite/internal/transport"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.ProvideValue[transport.Opener](injector, NewUDPOpener())
}
