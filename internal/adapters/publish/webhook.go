// Package publish delivers newly fired breaking news to external endpoints.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/ekiden/internal/domain/model"
	"github.com/okian/ekiden/pkg/metrics"
)

// Notification is the JSON body posted for a new message.
type Notification struct {
	RaceDay    int         `json:"raceDay"`
	UpdateTime time.Time   `json:"updateTime"`
	News       *model.News `json:"news"`
}

// Webhook posts notifications to configured HTTP endpoints.
// Delivery is synchronous; every endpoint is tried even after a failure.
type Webhook struct {
	client    *http.Client
	endpoints []string
}

// Option configures a Webhook.
type Option func(*Webhook)

// WithClient overrides the HTTP client (defaults to 2s timeout).
func WithClient(c *http.Client) Option {
	return func(w *Webhook) {
		if c != nil {
			w.client = c
		}
	}
}

// WithTimeout sets the timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(w *Webhook) {
		if d > 0 {
			w.client = &http.Client{Timeout: d}
		}
	}
}

// NewWebhook creates a webhook publisher.
func NewWebhook(endpoints []string, opts ...Option) *Webhook {
	w := &Webhook{
		client: &http.Client{Timeout: 2 * time.Second},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.endpoints = append([]string{}, endpoints...)
	return w
}

// Endpoints returns the configured endpoints.
func (w *Webhook) Endpoints() []string { return w.endpoints }

// Notify posts n to all endpoints and joins the delivery errors.
func (w *Webhook) Notify(ctx context.Context, n Notification) error {
	if len(w.endpoints) == 0 {
		return nil
	}
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	var errs []error
	for _, ep := range w.endpoints {
		if err := w.post(ctx, ep, body); err != nil {
			metrics.RecordWebhookDelivery("error")
			errs = append(errs, err)
			continue
		}
		metrics.RecordWebhookDelivery("ok")
	}
	return errors.Join(errs...)
}

func (w *Webhook) post(ctx context.Context, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook %s: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s: status %d", endpoint, resp.StatusCode)
	}
	return nil
}
