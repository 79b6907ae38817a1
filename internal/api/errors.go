package api

import "errors"

// Request errors map to 400, unprocessable errors to 422: the former mean
// the request itself is malformed, the latter that a well-formed workspace
// could not be turned into a model or fit.
var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrUnprocessable  = errors.New("unprocessable")
)

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

type unprocessableError struct {
	err error
}

func (e unprocessableError) Error() string {
	return e.err.Error()
}

func (e unprocessableError) Unwrap() error {
	return ErrUnprocessable
}

func newUnprocessable(err error) error {
	return unprocessableError{err: err}
}
