package session

import (
	"log/slog"

	"github.com/foxseedlab/voicesatellite/internal/notify"
	"github.com/foxseedlab/voicesatellite/internal/pipeline"
)

// Dispatcher turns decoded pipeline events into notifications. It keeps no
// state and does not enforce event ordering.
type Dispatcher struct {
	triggers notify.Triggers
}

func NewDispatcher(triggers notify.Triggers) *Dispatcher {
	return &Dispatcher{triggers: triggers}
}

func (d *Dispatcher) Dispatch(ev pipeline.Event) {
	switch e := ev.(type) {
	case pipeline.RunStart:
		slog.Debug("assist pipeline running")
		d.triggers.Start()
	case pipeline.STTEnd:
		if e.Text == "" {
			slog.Warn("no text in stt-end event")
			return
		}
		slog.Debug("speech recognised", "text", e.Text)
		d.triggers.STTEnd(e.Text)
	case pipeline.TTSStart:
		if e.Text == "" {
			slog.Warn("no text in tts-start event")
			return
		}
		slog.Debug("response text", "text", e.Text)
		d.triggers.TTSStart(e.Text)
	case pipeline.TTSEnd:
		if e.URL == "" {
			slog.Warn("no url in tts-end event")
			return
		}
		slog.Debug("response url", "url", e.URL)
		d.triggers.TTSEnd(e.URL)
	case pipeline.RunEnd:
		slog.Debug("assist pipeline ended")
		d.triggers.End()
	case pipeline.Error:
		slog.Error("assist pipeline error", "code", e.Code, "message", e.Message)
		d.triggers.Error(e.Code, e.Message)
	case pipeline.Unknown:
		slog.Debug("ignoring unknown pipeline event", "event", e.Name)
	}
}
