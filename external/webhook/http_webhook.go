package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/foxseedlab/voicesatellite/internal/webhook"
)

// ErrUnexpectedStatus is returned when the receiver answers outside 2xx.
var ErrUnexpectedStatus = errors.New("webhook receiver rejected notification")

// maxErrorBody caps how much of a rejected response ends up in the error.
const maxErrorBody = 512

// HTTPSender posts one JSON document per notification. An empty URL turns
// it into a no-op so the notifier can run unconditionally.
type HTTPSender struct {
	url    string
	client *http.Client
}

func NewHTTPSender(url string) webhook.Sender {
	return &HTTPSender{url: url, client: &http.Client{}}
}

func (s *HTTPSender) SendNotification(ctx context.Context, n webhook.Notification) error {
	if s.url == "" {
		return nil
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode %s notification: %w", n.Event, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s webhook request: %w", n.Event, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s notification: %w", n.Event, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s notification got status %d: %s", ErrUnexpectedStatus, n.Event, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	slog.Debug("webhook notification delivered", "event", n.Event, "status", resp.StatusCode, "bytes", len(body))
	return nil
}
