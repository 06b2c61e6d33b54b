package domain

import "errors"

var (
	// ErrMalformedEntry marks a snapshot prefix entry whose CIDR field is not a string.
	ErrMalformedEntry = errors.New("malformed prefix entry")

	// ErrMalformedPrefix marks a CIDR token that is not a well-formed address/prefixlen.
	ErrMalformedPrefix = errors.New("malformed prefix")

	// ErrInvalidWindow is returned when an aggregation window is not a positive integer.
	ErrInvalidWindow = errors.New("invalid window")

	// ErrInvalidPrefixLength is returned for IPv4 prefix lengths outside [0, 32].
	ErrInvalidPrefixLength = errors.New("invalid prefix length")

	// ErrUnknownFormat is returned when a rule format name is not recognized.
	ErrUnknownFormat = errors.New("unknown rule format")
)
