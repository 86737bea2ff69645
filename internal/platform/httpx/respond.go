// Package httpx provides HTTP response utilities for the JSON API.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON shape of every API failure.
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody is the JSON shape of write confirmations.
type MessageBody struct {
	Message string `json:"message"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// Message sends {"message": message}.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, MessageBody{Message: message})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
