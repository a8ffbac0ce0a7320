package raster

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSize   = errors.New("target size must be positive")
	ErrInvalidBorder = errors.New("border must not be negative")
	ErrNilGrid       = errors.New("grid is nil")
	ErrEmptyGrid     = errors.New("grid has no modules")
	ErrImageTooLarge = errors.New("image too large")
)

// RasterError represents errors that can occur while rasterizing a grid.
type RasterError struct {
	Operation string
	Err       error
}

func (e *RasterError) Error() string {
	return fmt.Sprintf("raster error in %s: %v", e.Operation, e.Err)
}

func (e *RasterError) Unwrap() error { return e.Err }
