package webhook

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (s *recordingSender) SendNotification(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return s.err
}

func (s *recordingSender) snapshot() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.sent...)
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestNotifier_ForwardsEveryTrigger(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender)
	n.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("JST", 9*60*60)) }
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx)

	tr := n.Triggers()
	tr.Start()
	tr.STTEnd("hello")
	tr.TTSStart("hi")
	tr.TTSEnd("http://x/y.wav")
	tr.Error("E1", "failed")
	tr.End()

	waitUntil(t, time.Second, func() bool { return len(sender.snapshot()) == 6 })
	got := sender.snapshot()
	want := []Notification{
		{Event: EventRunStart},
		{Event: EventSTTEnd, Text: "hello"},
		{Event: EventTTSStart, Text: "hi"},
		{Event: EventTTSEnd, URL: "http://x/y.wav"},
		{Event: EventError, Code: "E1", Message: "failed"},
		{Event: EventRunEnd},
	}
	for i := range want {
		want[i].SchemaVersion = NotificationSchemaVersion
		want[i].SentAt = "2026-03-01T03:00:00Z"
		if got[i] != want[i] {
			t.Fatalf("notification %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNotifier_SenderErrorsDoNotStopDelivery(t *testing.T) {
	sender := &recordingSender{err: errors.New("503")}
	n := NewNotifier(sender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx)

	tr := n.Triggers()
	tr.Start()
	tr.End()
	waitUntil(t, time.Second, func() bool { return len(sender.snapshot()) == 2 })
}
