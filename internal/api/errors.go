package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lexiqai/meeting-analyzer/internal/audio"
	"github.com/lexiqai/meeting-analyzer/internal/meeting"
	"github.com/lexiqai/meeting-analyzer/internal/notify"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

// statusFor maps request-level errors onto HTTP status codes
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, audio.ErrUploadTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, meeting.ErrMalformedInput),
		errors.Is(err, meeting.ErrSchemaViolation),
		errors.Is(err, meeting.ErrNoAudioSource),
		errors.Is(err, meeting.ErrNoValidRecipients):
		return http.StatusBadRequest
	case errors.Is(err, meeting.ErrServiceUnavailable),
		errors.Is(err, notify.ErrQueueFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	detail := err.Error()
	if code == http.StatusInternalServerError {
		detail = "internal server error"
	}
	writeJSON(w, code, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
