package offline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// rejectedError marks a mutation the remote refused outright (4xx).
type rejectedError struct {
	status string
}

func (e *rejectedError) Error() string {
	return "remote rejected: " + e.status
}

// Replayer drains the pending-mutation queue against the remote API once
// connectivity is back. Mutations replay oldest first; a failed replay
// stops the drain so later writes never overtake earlier ones.
type Replayer struct {
	store      *Store
	client     *http.Client
	baseURL    string
	maxRetries int
	log        *slog.Logger
}

// NewReplayer creates a replayer targeting baseURL. A mutation whose
// transient-failure retry count reaches maxRetries is dropped from the
// queue; rejected mutations are dropped on first refusal.
func NewReplayer(store *Store, baseURL string, maxRetries int, log *slog.Logger) *Replayer {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &Replayer{
		store:      store,
		client:     &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		maxRetries: maxRetries,
		log:        log,
	}
}

// ReplayAll drains the queue in FIFO order. It returns the number of
// mutations successfully replayed. A mutation the remote rejects outright
// is dropped so it cannot stall the queue; on the first transient delivery
// failure, the retry counter is incremented and the drain stops.
func (r *Replayer) ReplayAll(ctx context.Context) (int, error) {
	items, err := r.store.ListPendingMutations(ctx)
	if err != nil {
		return 0, err
	}

	replayed := 0
	for _, item := range items {
		if item.RetryCount >= r.maxRetries {
			r.log.Warn("dropping mutation after max retries",
				"id", item.ID, "url", item.URL, "retries", item.RetryCount)
			if err := r.store.RemovePendingMutation(ctx, item.ID); err != nil && err != ErrNotFound {
				return replayed, err
			}
			continue
		}

		if err := r.send(ctx, item); err != nil {
			var rejected *rejectedError
			if errors.As(err, &rejected) {
				// Retrying a rejected payload cannot succeed, and keeping
				// it queued would hold up every later write.
				r.log.Warn("dropping rejected mutation",
					"id", item.ID, "url", item.URL, "error", err)
				if err := r.store.RemovePendingMutation(ctx, item.ID); err != nil && err != ErrNotFound {
					return replayed, err
				}
				continue
			}

			r.log.Info("replay failed, stopping drain",
				"id", item.ID, "url", item.URL, "error", err)
			if incErr := r.store.IncrementRetry(ctx, item.ID); incErr != nil && incErr != ErrNotFound {
				return replayed, incErr
			}
			return replayed, nil
		}

		if err := r.store.RemovePendingMutation(ctx, item.ID); err != nil && err != ErrNotFound {
			return replayed, err
		}
		replayed++
	}

	return replayed, nil
}

// send delivers one mutation, retrying transient failures with exponential
// backoff. 4xx responses are permanent: retrying a rejected payload cannot
// succeed.
func (r *Replayer) send(ctx context.Context, item *PendingMutation) error {
	operation := func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, item.Method,
			r.baseURL+item.URL, bytes.NewReader(item.Data))
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range item.Headers {
			req.Header.Set(k, v)
		}

		resp, err := r.client.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer func() {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return struct{}{}, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return struct{}{}, backoff.Permanent(&rejectedError{status: resp.Status})
		default:
			return struct{}{}, fmt.Errorf("remote error: %s", resp.Status)
		}
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 200 * time.Millisecond

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(3),
	)
	return err
}
