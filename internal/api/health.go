package api

import "net/http"

// HealthHandler handles GET /api/healthz.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	WriteData(w, http.StatusOK, map[string]string{"status": "ok"})
}
