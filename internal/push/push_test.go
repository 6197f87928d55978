package push

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaadly/vaadly/internal/store"
	"github.com/vaadly/vaadly/internal/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Driver {
	t.Helper()

	d, err := sqlite.New(&store.DriverConfig{Driver: "sqlite", DataDir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, d.Init(context.Background()))
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func subscribe(t *testing.T, st store.PushStore, endpoint string) {
	t.Helper()
	require.NoError(t, st.CreateSubscription(context.Background(), &store.PushSubscription{
		ID:        uuid.NewString(),
		Endpoint:  endpoint,
		CreatedAt: time.Now().Unix(),
	}))
}

func TestDispatchCountsSentAndFailed(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer ok.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	subscribe(t, st, ok.URL+"/a")
	subscribe(t, st, ok.URL+"/b")
	subscribe(t, st, broken.URL+"/c")

	d := NewDispatcher(st, 5*time.Second, slog.Default())
	result, err := d.Dispatch(ctx, &Message{Title: "Meeting tonight", Body: "19:30 in the library"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
}

func TestDispatchPrunesGoneSubscriptions(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	gone := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer gone.Close()

	subscribe(t, st, gone.URL+"/dead")

	d := NewDispatcher(st, 5*time.Second, slog.Default())
	result, err := d.Dispatch(ctx, &Message{Title: "x", Body: "y"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)

	subs, err := st.ListSubscriptions(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs, "410 endpoints are removed from the store")
}

func TestDispatchWithNoSubscriptions(t *testing.T) {
	st := newTestStore(t)

	d := NewDispatcher(st, 5*time.Second, slog.Default())
	result, err := d.Dispatch(context.Background(), &Message{Title: "x", Body: "y"})
	require.NoError(t, err)
	assert.Zero(t, result.Sent)
	assert.Zero(t, result.Failed)
}
