package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vaadly/vaadly/internal/offline"
)

// SyncHandler exposes the offline queue so clients can hand their locally
// queued mutations to the server and trigger a replay.
type SyncHandler struct {
	store    *offline.Store
	replayer *offline.Replayer
	log      *slog.Logger
}

// NewSyncHandler creates a new sync handler. replayer may be nil when no
// replay base URL is configured; the replay endpoint then reports 503.
func NewSyncHandler(st *offline.Store, replayer *offline.Replayer, log *slog.Logger) *SyncHandler {
	return &SyncHandler{store: st, replayer: replayer, log: log}
}

// EnqueueRequest queues one mutation for later replay.
type EnqueueRequest struct {
	URL     string            `json:"url" validate:"required,max=2000"`
	Method  string            `json:"method" validate:"required,oneof=POST PUT PATCH DELETE"`
	Headers map[string]string `json:"headers"`
	Payload any               `json:"payload"`
}

// Enqueue handles POST /api/sync/queue.
func (h *SyncHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req EnqueueRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	id, err := h.store.EnqueueMutation(r.Context(), req.URL, req.Method, req.Headers, req.Payload)
	if err != nil {
		if errors.Is(err, offline.ErrSerialization) {
			WriteError(w, http.StatusBadRequest, "payload is not serializable", "payload")
			return
		}
		h.log.Error("enqueue failed", "error", err)
		WriteInternalError(w)
		return
	}

	WriteData(w, http.StatusCreated, map[string]int64{"id": id})
}

// ListPending handles GET /api/sync/queue.
func (h *SyncHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListPendingMutations(r.Context())
	if err != nil {
		h.log.Error("list pending failed", "error", err)
		WriteInternalError(w)
		return
	}
	WriteData(w, http.StatusOK, items)
}

// Remove handles DELETE /api/sync/queue/{id}.
func (h *SyncHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "id must be an integer", "id")
		return
	}

	if err := h.store.RemovePendingMutation(r.Context(), id); err != nil {
		if errors.Is(err, offline.ErrNotFound) {
			WriteNotFound(w, "pending mutation not found")
			return
		}
		h.log.Error("remove pending failed", "id", id, "error", err)
		WriteInternalError(w)
		return
	}
	WriteData(w, http.StatusOK, map[string]string{"status": "removed"})
}

// Replay handles POST /api/sync/replay.
func (h *SyncHandler) Replay(w http.ResponseWriter, r *http.Request) {
	if h.replayer == nil {
		WriteError(w, http.StatusServiceUnavailable, "replay is not configured", "")
		return
	}

	replayed, err := h.replayer.ReplayAll(r.Context())
	if err != nil {
		h.log.Error("replay failed", "error", err)
		WriteInternalError(w)
		return
	}
	WriteData(w, http.StatusOK, map[string]int{"replayed": replayed})
}

// Clear handles POST /api/sync/clear. Wipes the queue, cache, and entity
// mirrors; used on logout or device reset.
func (h *SyncHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearAll(r.Context()); err != nil {
		h.log.Error("clear failed", "error", err)
		WriteInternalError(w)
		return
	}
	WriteData(w, http.StatusOK, map[string]string{"status": "cleared"})
}
