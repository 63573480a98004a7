package ratelimit

import (
	"encoding/json"
	"net/http"
)

const tooManyRequestsMessage = "too many requests"

// errorPayload é o corpo JSON de todas as respostas de erro do gateway:
// {statusCode, error, message} mais campos extras por tipo de erro.
type errorPayload struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`

	Retryable bool `json:"retryable,omitempty"`
	Delay     int  `json:"delay,omitempty"`

	URL string `json:"url,omitempty"`

	Validation *validationInfo `json:"validation,omitempty"`
}

type validationInfo struct {
	Source string   `json:"source"`
	Keys   []string `json:"keys"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeTooManyRequests(w http.ResponseWriter, delaySeconds int) {
	w.Header().Set("Retry-After", formatInt(delaySeconds))
	writeJSON(w, http.StatusTooManyRequests, errorPayload{
		StatusCode: http.StatusTooManyRequests,
		Error:      tooManyRequestsMessage,
		Message:    tooManyRequestsMessage,
		Retryable:  true,
		Delay:      delaySeconds,
	})
}

func writeValidationError(w http.ResponseWriter, key, message string) {
	writeJSON(w, http.StatusBadRequest, errorPayload{
		StatusCode: http.StatusBadRequest,
		Error:      http.StatusText(http.StatusBadRequest),
		Message:    message,
		Validation: &validationInfo{Source: "query", Keys: []string{key}},
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

func writeUpstreamError(w http.ResponseWriter, status int, message, url string) {
	writeJSON(w, status, errorPayload{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
		URL:        url,
	})
}
