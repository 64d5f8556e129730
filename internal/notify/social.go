package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// SocialPoster publishes a short text announcement to a social network.
// Failures (throttling, transport errors, provider rejections) are
// returned for logging and must never block the publication workflow.
type SocialPoster interface {
	Post(ctx context.Context, text string) error
}

// WebhookPoster posts the announcement as JSON to a configured webhook
// endpoint. It is a single long-lived handle constructed at startup and
// passed to the fan-out explicitly.
type WebhookPoster struct {
	URL    string
	Token  string // optional bearer token
	Client *http.Client
}

// NewWebhookPoster builds a poster with a bounded-client default.
func NewWebhookPoster(url, token string) *WebhookPoster {
	return &WebhookPoster{
		URL:    url,
		Token:  token,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Post sends {"text": ...} to the webhook. Any non-2xx status is an error.
func (p *WebhookPoster) Post(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.Token)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook status %d: %s", resp.StatusCode, bytes.TrimSpace(b))
	}
	return nil
}

// LogPoster is the development fallback used when no webhook is
// configured.
type LogPoster struct{}

func (LogPoster) Post(_ context.Context, text string) error {
	log.Printf("social: [simulated] %s", text)
	return nil
}
