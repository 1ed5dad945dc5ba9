// Package notify posts finished-session summaries to a webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/verte-zerg/tuitables/internal/model"
)

const (
	// EventSessionFinished is the event name carried by every payload.
	EventSessionFinished = "session.finished"

	defaultTimeout   = 5 * time.Second
	maxErrorBodySize = 512
)

// WebhookConfig holds webhook configuration.
type WebhookConfig struct {
	URL      string
	DeviceID string
	Timeout  time.Duration
	Headers  map[string]string
}

// Payload is the JSON body posted for each session.
type Payload struct {
	Event     string        `json:"event"`
	DeviceID  string        `json:"device_id,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Summary   model.Summary `json:"summary"`
	Accuracy  float64       `json:"accuracy"`
}

// WebhookSender posts session summaries.
type WebhookSender struct {
	config     WebhookConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewWebhookSender creates a sender. A zero timeout falls back to five seconds.
func NewWebhookSender(config WebhookConfig) *WebhookSender {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	return &WebhookSender{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		now:        time.Now,
	}
}

// Enabled reports whether a webhook URL is configured.
func (s *WebhookSender) Enabled() bool {
	return s != nil && s.config.URL != ""
}

// Send posts the summary. It returns nil without a request when no URL is configured.
func (s *WebhookSender) Send(ctx context.Context, sum model.Summary) error {
	if !s.Enabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	body, err := json.Marshal(Payload{
		Event:     EventSessionFinished,
		DeviceID:  s.config.DeviceID,
		Timestamp: s.now().UTC(),
		Summary:   sum,
		Accuracy:  sum.Accuracy(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}
	return nil
}
