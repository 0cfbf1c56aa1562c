package webhook

import "context"

const NotificationSchemaVersion = 1

const (
	EventRunStart = "run-start"
	EventRunEnd   = "run-end"
	EventSTTEnd   = "stt-end"
	EventTTSStart = "tts-start"
	EventTTSEnd   = "tts-end"
	EventError    = "error"
)

type Notification struct {
	SchemaVersion int    `json:"schema_version"`
	Event         string `json:"event"`
	Text          string `json:"text,omitempty"`
	URL           string `json:"url,omitempty"`
	Code          string `json:"code,omitempty"`
	Message       string `json:"message,omitempty"`
	SentAt        string `json:"sent_at"`
}

type Sender interface {
	SendNotification(ctx context.Context, n Notification) error
}
