// Where: internal/notify/notify.go
// What: Push notification publishing for operator alerts.
// Why: Surface fatal bot errors and filled orders on a phone without extra infra.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Notification is a single push message.
type Notification struct {
	Title   string
	Message string
	Tags    []string
}

// Notifier delivers notifications to an external channel.
type Notifier interface {
	Push(ctx context.Context, n Notification) error
}

// Nop is a Notifier that discards everything. Used when no topic is configured.
type Nop struct{}

// Push implements Notifier by doing nothing.
func (Nop) Push(context.Context, Notification) error { return nil }

// NtfyPublisher posts notifications to an ntfy.sh topic.
// Subscribing to the topic on the ntfy mobile app is all the setup needed.
type NtfyPublisher struct {
	BaseURL string
	Topic   string
	Client  *http.Client
}

// NewNtfyPublisher creates a publisher for the given topic.
// An empty baseURL defaults to the public ntfy.sh instance.
func NewNtfyPublisher(baseURL, topic string) *NtfyPublisher {
	if baseURL == "" {
		baseURL = "https://ntfy.sh"
	}
	return &NtfyPublisher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Topic:   topic,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Push posts the notification body to the topic endpoint with
// Title and Tags carried as headers, matching the ntfy publish API.
func (p *NtfyPublisher) Push(ctx context.Context, n Notification) error {
	if p.Topic == "" {
		return fmt.Errorf("ntfy topic is empty")
	}
	url := p.BaseURL + "/" + p.Topic
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(n.Message))
	if err != nil {
		return err
	}
	if n.Title != "" {
		req.Header.Set("Title", n.Title)
	}
	if len(n.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(n.Tags, ","))
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("push notification: unexpected status %d", resp.StatusCode)
	}
	return nil
}
