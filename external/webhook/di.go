package webhook

import (
	"github.com/foxseedlab/voicesatellite/internal/config"
	"github.com/foxseedlab/voicesatellite/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (webhook.Sender, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewHTTPSender(c.NotificationWebhookURL), nil
	})
	do.Provide(injector, func(i do.Injector) (*webhook.Notifier, error) {
		return webhook.NewNotifier(do.MustInvoke[webhook.Sender](i)), nil
	})
}
