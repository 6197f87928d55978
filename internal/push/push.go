// Package push fans notifications out to registered device subscriptions.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vaadly/vaadly/internal/store"
)

// Message is the payload delivered to every subscription.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Result summarizes one dispatch fanout.
type Result struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Dispatcher delivers messages to push endpoints and prunes dead ones.
type Dispatcher struct {
	store  store.PushStore
	client *http.Client
	log    *slog.Logger
}

// NewDispatcher creates a dispatcher. timeout bounds each delivery attempt.
func NewDispatcher(st store.PushStore, timeout time.Duration, log *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		store:  st,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Dispatch sends msg to every stored subscription and returns sent/failed
// counts. Endpoints answering 404 or 410 are unregistered devices and get
// removed from the store.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *Message) (*Result, error) {
	subs, err := d.store.ListSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, sub := range subs {
		if err := d.deliver(ctx, sub, payload); err != nil {
			result.Failed++
			d.log.Debug("push delivery failed",
				"endpoint", sub.Endpoint, "error", err)
			continue
		}
		result.Sent++
	}

	return result, nil
}

func (d *Dispatcher) deliver(ctx context.Context, sub *store.PushSubscription, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("TTL", "86400")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		if err := d.store.DeleteSubscriptionByEndpoint(ctx, sub.Endpoint); err != nil && err != store.ErrNotFound {
			d.log.Warn("failed to prune dead subscription",
				"endpoint", sub.Endpoint, "error", err)
		}
		return errSubscriptionGone
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, status: resp.Status}
	}
	return nil
}

var errSubscriptionGone = &statusError{code: http.StatusGone, status: "subscription gone"}

type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return "push endpoint returned " + e.status
}
