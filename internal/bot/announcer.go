package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/voicesatellite/internal/discord"
	"github.com/foxseedlab/voicesatellite/internal/notify"
)

const announcementQueueSize = 32

// Announcer posts pipeline notifications to a discord text channel. Posting
// happens on its own goroutine so a slow REST call never stalls the control
// channel.
type Announcer struct {
	client    discord.Client
	channelID string
	queue     chan string
	now       func() time.Time

	mu           sync.Mutex
	runStartedAt time.Time
}

func NewAnnouncer(client discord.Client, channelID string) *Announcer {
	return &Announcer{
		client:    client,
		channelID: channelID,
		queue:     make(chan string, announcementQueueSize),
		now:       time.Now,
	}
}

// Triggers is empty when no text channel is configured.
func (a *Announcer) Triggers() notify.Triggers {
	if a.channelID == "" {
		return notify.Triggers{}
	}
	return notify.Triggers{
		OnStart: func() {
			a.mu.Lock()
			a.runStartedAt = a.now()
			a.mu.Unlock()
			a.enqueue(messageRunStart)
		},
		OnEnd: func() {
			a.enqueue(runEndMessage(a.elapsed()))
		},
		OnSTTEnd: func(text string) {
			a.enqueue(fmt.Sprintf(messageSTTEndFormat, text))
		},
		OnTTSStart: func(text string) {
			a.enqueue(fmt.Sprintf(messageTTSStartFormat, text))
		},
		OnTTSEnd: func(url string) {
			a.enqueue(fmt.Sprintf(messageTTSEndFormat, url))
		},
		OnError: func(code, message string) {
			a.enqueue(errorMessage(code, message))
		},
	}
}

// Run posts queued announcements until ctx is canceled.
func (a *Announcer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-a.queue:
			if err := a.client.SendChannelMessage(a.channelID, msg); err != nil {
				slog.Warn("failed to post announcement", "channel_id", a.channelID, "error", err)
			}
		}
	}
}

func (a *Announcer) enqueue(msg string) {
	select {
	case a.queue <- msg:
	default:
		slog.Warn("announcement queue full; dropping message", "channel_id", a.channelID)
	}
}

func (a *Announcer) elapsed() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runStartedAt.IsZero() {
		return 0
	}
	d := a.now().Sub(a.runStartedAt)
	a.runStartedAt = time.Time{}
	return d
}
