package common

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the response body shape for the inquiry API.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(logger *log.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Printf("JSON エンコードに失敗: %v", err)
	}
}

// WriteSuccess writes {"success":true} with 200.
func WriteSuccess(logger *log.Logger, w http.ResponseWriter) {
	WriteJSON(logger, w, http.StatusOK, Envelope{Success: true})
}

// WriteFailure writes {"success":false,"message":...} with the given status.
func WriteFailure(logger *log.Logger, w http.ResponseWriter, status int, message string) {
	WriteJSON(logger, w, status, Envelope{Success: false, Message: message})
}
