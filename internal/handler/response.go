package handler

import (
	"encoding/json"
	"net/http"

	"aa-consent-gateway/internal/model"
)

// ServiceName is reported by the info and health endpoints
const ServiceName = "aa-consent-gateway"

// ServiceVersion is reported by the info endpoint
const ServiceVersion = "1.0.0"

func sendJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// sendErrorResponse writes the standard error body
func sendErrorResponse(w http.ResponseWriter, code, message string, statusCode int) {
	sendJSON(w, statusCode, model.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Code:    code,
		Message: message,
	})
}

// NotFound handles unmatched routes
func NotFound(w http.ResponseWriter, r *http.Request) {
	sendErrorResponse(w, "ERR_NOT_FOUND", "Route "+r.Method+" "+r.URL.Path+" not found", http.StatusNotFound)
}

// MethodNotAllowed handles a known route called with the wrong method
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	sendErrorResponse(w, "ERR_METHOD_NOT_ALLOWED", "Method "+r.Method+" not allowed on "+r.URL.Path, http.StatusMethodNotAllowed)
}
