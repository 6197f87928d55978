package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vaadly/vaadly/internal/push"
	"github.com/vaadly/vaadly/internal/store"
)

// PushHandler handles push subscription and dispatch endpoints.
type PushHandler struct {
	store      store.PushStore
	dispatcher *push.Dispatcher
	enabled    bool
	log        *slog.Logger
}

// NewPushHandler creates a new push handler. When enabled is false the
// dispatch endpoint answers 503; subscriptions stay manageable so devices
// are ready when dispatch is turned back on.
func NewPushHandler(st store.PushStore, dispatcher *push.Dispatcher, enabled bool, log *slog.Logger) *PushHandler {
	return &PushHandler{store: st, dispatcher: dispatcher, enabled: enabled, log: log}
}

// SubscribeRequest registers a device endpoint.
type SubscribeRequest struct {
	Endpoint   string `json:"endpoint" validate:"required,url"`
	P256dhKey  string `json:"p256dh_key" validate:"required"`
	AuthKey    string `json:"auth_key" validate:"required"`
	DeviceName string `json:"device_name" validate:"max=200"`
}

// UnsubscribeRequest removes a device endpoint.
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
}

// DispatchRequest fans a notification out to all subscriptions.
type DispatchRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"required,max=2000"`
	Icon  string `json:"icon" validate:"omitempty,url"`
	URL   string `json:"url" validate:"omitempty,url"`
}

// Subscribe handles POST /api/push/subscribe.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	sub := &store.PushSubscription{
		ID:         uuid.NewString(),
		Endpoint:   req.Endpoint,
		P256dhKey:  req.P256dhKey,
		AuthKey:    req.AuthKey,
		DeviceName: req.DeviceName,
		CreatedAt:  time.Now().Unix(),
	}

	if err := h.store.CreateSubscription(r.Context(), sub); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			WriteError(w, http.StatusConflict, "endpoint already subscribed", "endpoint")
			return
		}
		writeStoreError(w, h.log, err, "subscription")
		return
	}
	WriteData(w, http.StatusCreated, sub)
}

// Unsubscribe handles POST /api/push/unsubscribe.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req UnsubscribeRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	if err := h.store.DeleteSubscriptionByEndpoint(r.Context(), req.Endpoint); err != nil {
		writeStoreError(w, h.log, err, "subscription")
		return
	}
	WriteData(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}

// Dispatch handles POST /api/push/dispatch. Editors and admins only; the
// route table enforces the role gate.
func (h *PushHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	if !h.enabled {
		WriteError(w, http.StatusServiceUnavailable, "push dispatch is disabled", "")
		return
	}

	var req DispatchRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	result, err := h.dispatcher.Dispatch(ctx, &push.Message{
		Title: req.Title,
		Body:  req.Body,
		Icon:  req.Icon,
		URL:   req.URL,
	})
	if err != nil {
		writeStoreError(w, h.log, err, "dispatch")
		return
	}

	logEntry := &store.NotificationLog{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Body:        req.Body,
		Icon:        req.Icon,
		URL:         req.URL,
		SentCount:   result.Sent,
		FailedCount: result.Failed,
		CreatedAt:   time.Now().Unix(),
	}
	if err := h.store.CreateNotificationLog(ctx, logEntry); err != nil {
		h.log.Warn("failed to record notification log", "error", err)
	}

	WriteData(w, http.StatusOK, result)
}

// History handles GET /api/push/history.
func (h *PushHandler) History(w http.ResponseWriter, r *http.Request) {
	logs, err := h.store.ListNotificationLogs(r.Context())
	if err != nil {
		writeStoreError(w, h.log, err, "notifications")
		return
	}
	WriteData(w, http.StatusOK, logs)
}
