package barcode

import (
	"context"
	"image"

	"github.com/MeKo-Tech/qrbatch/internal/qr"
)

// Format represents a barcode symbology.
type Format int

const (
	FormatUnknown Format = iota
	FormatQR
)

func (f Format) String() string {
	if f == FormatQR {
		return "qr"
	}
	return "unknown"
}

// Symbol is an encoded module grid without quiet zone.
type Symbol interface {
	Size() int
	Dark(x, y int) bool
	Version() int
}

// Engine encodes payloads into symbols.
type Engine interface {
	Name() string
	Encode(payload string, level qr.Level) (Symbol, error)
}

// Options controls decoding behavior.
type Options struct {
	// TryHarder enables more exhaustive search (slower but more robust).
	TryHarder bool

	// PureBarcode declares the image holds only an unrotated code with a
	// quiet zone, as produced by package raster.
	PureBarcode bool

	// CharacterSet is the assumed encoding of byte segments, e.g. "UTF-8".
	// Empty lets the decoder guess.
	CharacterSet string
}

// Result represents a decoded barcode.
type Result struct {
	Type  Format
	Value string
}

// Decoder reads barcodes out of images.
type Decoder interface {
	Decode(ctx context.Context, img image.Image, opts Options) ([]Result, error)
}
