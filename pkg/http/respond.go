package http

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// MessageResponse is the {"msg": ...} shape used by the verification endpoints.
type MessageResponse struct {
	Msg        string `json:"msg"`
	RetryAfter int    `json:"retryAfter,omitempty"` // seconds, only on 429
}

// ErrorsResponse is the {"errors": [...]} shape used by register and login.
type ErrorsResponse struct {
	Errors []string `json:"errors"`
}

// WriteJSON writes any payload with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Log encoding errors but don't expose them to client
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteMessage writes a {"msg": ...} response
func WriteMessage(w http.ResponseWriter, statusCode int, msg string) {
	WriteJSON(w, statusCode, MessageResponse{Msg: msg})
}

// WriteErrors writes an {"errors": [...]} response
func WriteErrors(w http.ResponseWriter, statusCode int, errs ...string) {
	WriteJSON(w, statusCode, ErrorsResponse{Errors: errs})
}

// WriteRateLimited writes a 429 with a Retry-After header and hint in the body
func WriteRateLimited(w http.ResponseWriter, retryAfterSeconds int, msg string) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	WriteJSON(w, http.StatusTooManyRequests, MessageResponse{
		Msg:        msg,
		RetryAfter: retryAfterSeconds,
	})
}

func WriteBadRequest(w http.ResponseWriter, msg string) {
	WriteMessage(w, http.StatusBadRequest, msg)
}

func WriteUnauthorized(w http.ResponseWriter, errs ...string) {
	WriteErrors(w, http.StatusUnauthorized, errs...)
}

func WriteNotFound(w http.ResponseWriter, msg string) {
	WriteMessage(w, http.StatusNotFound, msg)
}

func WriteConflict(w http.ResponseWriter, errs ...string) {
	WriteErrors(w, http.StatusConflict, errs...)
}

func WriteInternalError(w http.ResponseWriter, msg string) {
	WriteMessage(w, http.StatusInternalServerError, msg)
}
