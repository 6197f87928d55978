// Package api contains the JSON HTTP handlers for the application API.
package api

import (
	"encoding/json"
	"net/http"
)

// envelope is the uniform response shape: {"success":true,"data":...} on
// success, {"success":false,"error":{...}} on failure.
type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WriteData writes a success envelope.
func WriteData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// WriteError writes an error envelope. field names the offending request
// field when the error is a validation failure.
func WriteError(w http.ResponseWriter, status int, message, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   &errorBody{Message: message, Field: field},
	})
}

// WriteUnauthorized writes a 401 error envelope.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, "")
}

// WriteForbidden writes a 403 error envelope.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, "")
}

// WriteNotFound writes a 404 error envelope.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, "")
}

// WriteTooManyRequests writes a 429 error envelope.
func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, "")
}

// WriteInternalError writes a 500 error envelope without leaking details.
func WriteInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "internal server error", "")
}
