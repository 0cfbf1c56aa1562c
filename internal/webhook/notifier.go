package webhook

import (
	"context"
	"log/slog"
	"time"

	"github.com/foxseedlab/voicesatellite/internal/notify"
)

const (
	notificationQueueSize = 64
	sendTimeout           = 10 * time.Second
)

// Notifier forwards session notifications to a webhook Sender from a
// background worker.
type Notifier struct {
	sender Sender
	queue  chan Notification
	now    func() time.Time
}

func NewNotifier(sender Sender) *Notifier {
	return &Notifier{
		sender: sender,
		queue:  make(chan Notification, notificationQueueSize),
		now:    time.Now,
	}
}

func (n *Notifier) Triggers() notify.Triggers {
	return notify.Triggers{
		OnStart:    func() { n.enqueue(Notification{Event: EventRunStart}) },
		OnEnd:      func() { n.enqueue(Notification{Event: EventRunEnd}) },
		OnSTTEnd:   func(text string) { n.enqueue(Notification{Event: EventSTTEnd, Text: text}) },
		OnTTSStart: func(text string) { n.enqueue(Notification{Event: EventTTSStart, Text: text}) },
		OnTTSEnd:   func(url string) { n.enqueue(Notification{Event: EventTTSEnd, URL: url}) },
		OnError: func(code, message string) {
			n.enqueue(Notification{Event: EventError, Code: code, Message: message})
		},
	}
}

// Run delivers queued notifications until ctx is canceled.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-n.queue:
			n.send(ctx, msg)
		}
	}
}

func (n *Notifier) send(parent context.Context, msg Notification) {
	ctx, cancel := context.WithTimeout(parent, sendTimeout)
	defer cancel()
	if err := n.sender.SendNotification(ctx, msg); err != nil {
		slog.Warn("webhook notification failed", "event", msg.Event, "error", err)
	}
}

func (n *Notifier) enqueue(msg Notification) {
	msg.SchemaVersion = NotificationSchemaVersion
	msg.SentAt = n.now().UTC().Format(time.RFC3339)
	select {
	case n.queue <- msg:
	default:
		slog.Warn("webhook queue full; dropping notification", "event", msg.Event)
	}
}
