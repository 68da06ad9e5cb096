package models

import "errors"

var (
	// ErrInvalidArgument reports a precondition violation. It is returned
	// before any computation takes place.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNumericOverflow reports a price that could not be represented,
	// typically an exponential overflowing for extreme rates or expiries.
	ErrNumericOverflow = errors.New("numeric overflow")
)
