package ntfy

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"secalerts/internal/ports"
)

// Notifier sends notifications to an ntfy topic.
type Notifier struct {
	baseURL string
	topic   string
	headers map[string]string
	client  *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the server base URL, topic, and extra headers
// (auth tokens and the like).
func NewNotifier(baseURL, topic string, headers map[string]string) *Notifier {
	return &Notifier{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		topic:   topic,
		headers: headers,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts one notification. The notification URL rides along both as
// the click action and in the body.
func (n *Notifier) Send(ctx context.Context, notification ports.Notification) error {
	if n.baseURL == "" || n.topic == "" {
		return fmt.Errorf("ntfy notifier misconfigured")
	}

	body := notification.Title + "\n\n" + notification.Message
	if notification.URL != "" {
		body += "\n\n" + notification.URL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/"+n.topic, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	for key, value := range n.headers {
		req.Header.Set(key, value)
	}
	if notification.Priority != "" {
		req.Header.Set("X-Priority", notification.Priority)
	}
	if len(notification.Tags) > 0 {
		req.Header.Set("X-Tags", strings.Join(notification.Tags, ","))
	}
	if notification.URL != "" {
		req.Header.Set("X-Click", notification.URL)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy error: %s", resp.Status)
	}

	return nil
}
