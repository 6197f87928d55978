package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vaadly/vaadly/internal/store"
)

// writeStoreError maps a store error onto the response envelope.
func writeStoreError(w http.ResponseWriter, log *slog.Logger, err error, what string) {
	if errors.Is(err, store.ErrNotFound) {
		WriteNotFound(w, what+" not found")
		return
	}
	log.Error("store operation failed", "what", what, "error", err)
	WriteInternalError(w)
}
