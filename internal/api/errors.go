package api

import (
	"errors"
	"net/http"

	"github.com/samcharles93/wordrnn/internal/model"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// statusFor maps an error from the sampling pipeline to an HTTP status and
// error type.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, model.ErrConfiguration):
		return http.StatusBadRequest, "invalid_request_error"
	case errors.Is(err, model.ErrLookup):
		return http.StatusNotFound, "not_found_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}
