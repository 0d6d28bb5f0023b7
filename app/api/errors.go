package api

import (
	"errors"

	"github.com/dmitrymomot/leaderboard/core/handler"
	"github.com/dmitrymomot/leaderboard/core/response"
	"github.com/dmitrymomot/leaderboard/leaderboard"
	"github.com/dmitrymomot/leaderboard/pkg/tokenguard"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingEngine = errors.New("leaderboard engine is required")
	ErrMissingGuard  = errors.New("token guard is required")
)

var (
	errInvalidToken = response.ErrUnauthorized.WithMessage("invalid or expired session token")
	errInvalidBody  = response.ErrBadRequest.WithMessage("Invalid request body")
	errNameRequired = response.ErrBadRequest.WithMessage("Name is required")
	errInvalidScore = response.ErrBadRequest.WithMessage("Score must be a non-negative integer")
	errScoreTooLow  = response.ErrConflict.WithMessage("Score too low to make the leaderboard")
	errBusy         = response.ErrServiceUnavailable.WithMessage("Leaderboard busy, try again")
)

// errorResponse maps domain errors to client errors. Anything unmapped is
// returned as is so the logging middleware records the cause of the 500.
func errorResponse(err error) handler.Response {
	return response.Error(toHTTPError(err))
}

func toHTTPError(err error) error {
	switch {
	case tokenguard.IsRejection(err):
		return errInvalidToken
	case errors.Is(err, leaderboard.ErrNameRequired):
		return errNameRequired
	case errors.Is(err, leaderboard.ErrInvalidScore):
		return errInvalidScore
	case errors.Is(err, leaderboard.ErrBelowCutoff):
		return errScoreTooLow
	case errors.Is(err, leaderboard.ErrConflict):
		return errBusy
	default:
		return err
	}
}
