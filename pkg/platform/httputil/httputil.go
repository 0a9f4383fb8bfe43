// Package httputil writes JSON responses and maps coded domain errors to HTTP
// statuses.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"payout/pkg/domain"
	dErrors "payout/pkg/domain-errors"
	"payout/pkg/requestcontext"
)

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeBadRequest:         http.StatusBadRequest,
	dErrors.CodeInvalidInput:       http.StatusBadRequest,
	dErrors.CodeInvalidRequest:     http.StatusBadRequest,
	dErrors.CodeValidation:         http.StatusBadRequest,
	dErrors.CodeUnauthorized:       http.StatusUnauthorized,
	dErrors.CodeForbidden:          http.StatusForbidden,
	dErrors.CodeNotFound:           http.StatusNotFound,
	dErrors.CodeConflict:           http.StatusConflict,
	dErrors.CodePolicyViolation:    http.StatusUnprocessableEntity,
	dErrors.CodeInvariantViolation: http.StatusConflict,
	dErrors.CodeTimeout:            http.StatusGatewayTimeout,
	dErrors.CodeInternal:           http.StatusInternalServerError,
}

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// StatusFor returns the HTTP status for err.
func StatusFor(err error) int {
	if status, ok := statusByCode[dErrors.CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteError writes err as JSON. Internal errors never expose their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := ErrorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		resp.Description = dErrors.Message(err)
	}
	WriteJSON(w, StatusFor(err), resp)
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

var errNoCaller = dErrors.New(dErrors.CodeUnauthorized, "authentication required")

// Caller returns the principal the auth middleware attached to the request.
func Caller(r *http.Request) (domain.Address, error) {
	caller, ok := requestcontext.Caller(r.Context())
	if !ok || caller.IsZero() {
		return domain.ZeroAddress, errNoCaller
	}
	return caller, nil
}

// WriteFailure logs a failed operation and writes err. Client errors log at
// warn, server errors at error.
func WriteFailure(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	ctx := r.Context()
	status := StatusFor(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"status", status,
		"error", err,
	)
	WriteError(w, err)
}
