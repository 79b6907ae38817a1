package workspace

import "errors"

var (
	ErrInvalidSpec = errors.New("invalid workspace spec")
	ErrNoChannel   = errors.New("channel not found")
)
