package pdf

import "errors"

var (
	// ErrInvalidModifier marks modifier declarations the model builder
	// cannot honor: unknown types or malformed payloads.
	ErrInvalidModifier = errors.New("invalid modifier")

	// ErrInvalidNameReuse marks a modifier name declared twice in an
	// incompatible way: with two different types, or for a type whose
	// parameters are never shared.
	ErrInvalidNameReuse = errors.New("invalid modifier name reuse")

	// ErrNoPOI is returned when the parameter of interest is requested
	// but was never configured.
	ErrNoPOI = errors.New("no parameter of interest set")

	// ErrPOINotFound marks a configured POI name that no modifier
	// declares.
	ErrPOINotFound = errors.New("parameter of interest not declared")

	// ErrInvalidPOI marks a POI pointing at a constrained or
	// multi-parameter modifier.
	ErrInvalidPOI = errors.New("invalid parameter of interest")
)
