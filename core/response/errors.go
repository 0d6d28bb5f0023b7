package response

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/leaderboard/core/handler"
)

// HTTPError is an error with a client-facing JSON body. Status is not
// serialized.
type HTTPError struct {
	Status  int            `json:"-"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e HTTPError) Error() string   { return e.Message }
func (e HTTPError) StatusCode() int { return e.Status }

// WithMessage returns a copy with message replaced.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy carrying details.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	e.Details = details
	return e
}

var (
	ErrBadRequest          = statusError(http.StatusBadRequest, "bad_request")
	ErrUnauthorized        = statusError(http.StatusUnauthorized, "unauthorized")
	ErrForbidden           = statusError(http.StatusForbidden, "forbidden")
	ErrNotFound            = statusError(http.StatusNotFound, "not_found")
	ErrMethodNotAllowed    = statusError(http.StatusMethodNotAllowed, "method_not_allowed")
	ErrConflict            = statusError(http.StatusConflict, "conflict")
	ErrRequestTooLarge     = statusError(http.StatusRequestEntityTooLarge, "request_entity_too_large")
	ErrTooManyRequests     = statusError(http.StatusTooManyRequests, "too_many_requests")
	ErrInternalServerError = statusError(http.StatusInternalServerError, "internal_server_error")
	ErrServiceUnavailable  = statusError(http.StatusServiceUnavailable, "service_unavailable")
)

var byStatus = map[int]HTTPError{}

func statusError(status int, code string) HTTPError {
	e := HTTPError{Status: status, Code: code, Message: http.StatusText(status)}
	byStatus[status] = e
	return e
}

// AsHTTPError resolves err to the error shown to the client. An HTTPError in
// the chain is returned as is. Otherwise an error exposing StatusCode() int
// maps to the predefined error for that status, and anything else becomes a
// bare 500 so internal causes never leak.
func AsHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		if known, ok := byStatus[sc.StatusCode()]; ok {
			return known
		}
	}
	return ErrInternalServerError
}

// JSONErrorHandler renders err as an HTTPError JSON body. If that write
// fails too, a plain 500 is attempted.
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := AsHTTPError(err)
	w := ctx.ResponseWriter()
	if renderErr := JSONWithStatus(httpErr, httpErr.Status)(w, ctx.Request()); renderErr != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
