package qr

import (
	"errors"
	"fmt"
)

var (
	// ErrDataTooLong is returned when a payload exceeds the capacity of
	// version 40 at the requested level.
	ErrDataTooLong = errors.New("qr: data too long")

	// ErrInvalidLevel is returned for unknown error correction levels.
	ErrInvalidLevel = errors.New("qr: invalid error correction level")
)

// EncodingError describes a payload that could not be encoded.
type EncodingError struct {
	Level  Level
	Mode   string // segment mode chosen for the payload
	Length int    // payload length in bytes
	Err    error
}

func (e *EncodingError) Error() string {
	if e.Mode == "" {
		return fmt.Sprintf("qr: cannot encode %d bytes at level %s: %v", e.Length, e.Level, e.Err)
	}
	return fmt.Sprintf("qr: cannot encode %d bytes in %s mode at level %s: %v", e.Length, e.Mode, e.Level, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }
