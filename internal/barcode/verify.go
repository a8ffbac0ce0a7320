package barcode

import (
	"context"
	"errors"
	"fmt"
	"image"
)

var (
	// ErrNotDetected is returned when no QR code could be read.
	ErrNotDetected = errors.New("barcode: no QR code detected")

	// ErrVerifyMismatch is returned when a rendered image decodes to a
	// different payload, or to nothing at all.
	ErrVerifyMismatch = errors.New("barcode: verification failed")
)

// VerifyOptions are the decoder options Verify uses for rendered images.
var VerifyOptions = Options{
	TryHarder:    true,
	PureBarcode:  true,
	CharacterSet: "UTF-8",
}

// Verify decodes img with dec and checks that it yields want.
// The returned error wraps ErrVerifyMismatch, and ErrNotDetected when the
// image could not be decoded.
func Verify(ctx context.Context, dec Decoder, img image.Image, want string) error {
	results, err := dec.Decode(ctx, img, VerifyOptions)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: %w", ErrVerifyMismatch, err)
	}
	for _, r := range results {
		if r.Value == want {
			return nil
		}
	}
	got := ""
	if len(results) > 0 {
		got = results[0].Value
	}
	return fmt.Errorf("%w: decoded %q, want %q", ErrVerifyMismatch, got, want)
}
