package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperr "github.com/matzehuels/flowgrid/pkg/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      apperr.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code apperr.Code) int {
	switch code {
	case apperr.ErrCodeInvalidInput, apperr.ErrCodeInvalidFormat, apperr.ErrCodeUnsupported:
		return http.StatusBadRequest
	case apperr.ErrCodeInvalidFlow, apperr.ErrCodeUnknownNode:
		return http.StatusUnprocessableEntity
	case apperr.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.GetCode(err)
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		code = apperr.ErrCodeInvalidInput
	case code == "":
		code = apperr.ErrCodeInternal
	}
	status := statusFor(code)
	if errors.As(err, &maxErr) {
		status = http.StatusRequestEntityTooLarge
	}

	msg := apperr.UserMessage(err)
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   msg,
		RequestID: RequestID(r.Context()),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func notFound(format string, args ...any) error {
	return apperr.New(apperr.ErrCodeNotFound, format, args...)
}
