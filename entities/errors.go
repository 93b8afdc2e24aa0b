package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument signals a request the caller must fix.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUpstreamUnavailable signals an unreachable store or a malformed store response.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrValidation signals a request body that is well formed but fails field checks.
	ErrValidation = errors.New("validation failed")
	// ErrReferenceResolution signals a failed reference-code lookup. It never reaches the caller.
	ErrReferenceResolution = errors.New("reference resolution failed")

	// ErrInvalidFilter signals an empty or entirely invalid filter set.
	ErrInvalidFilter = fmt.Errorf("%w: invalid filter", ErrInvalidArgument)
	// ErrUnknownVariant signals an unsupported collection variant.
	ErrUnknownVariant = fmt.Errorf("%w: unknown collection variant", ErrInvalidArgument)
)
