package barcode

import (
	"context"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// NewDecoder returns the gozxing-backed QR decoder.
func NewDecoder() Decoder { return &gozxingDecoder{} }

type gozxingDecoder struct{}

func (d *gozxingDecoder) Decode(ctx context.Context, img image.Image, opts Options) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("%w: image is nil", ErrNotDetected)
	}

	hints := make(map[gozxing.DecodeHintType]interface{})
	if opts.TryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	if opts.PureBarcode {
		hints[gozxing.DecodeHintType_PURE_BARCODE] = true
	}
	if opts.CharacterSet != "" {
		hints[gozxing.DecodeHintType_CHARACTER_SET] = opts.CharacterSet
	}

	bitmap, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to binarize image: %w", err)
	}

	reader := qrcode.NewQRCodeReader()
	r, err := reader.Decode(bitmap, hints)
	if err != nil && opts.PureBarcode {
		// Pure mode is strict about the quiet zone; retry with detection.
		delete(hints, gozxing.DecodeHintType_PURE_BARCODE)
		r, err = reader.Decode(bitmap, hints)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDetected, err)
	}

	return []Result{{
		Type:  mapFormatFromZXing(r.GetBarcodeFormat()),
		Value: r.GetText(),
	}}, nil
}

func mapFormatFromZXing(bf gozxing.BarcodeFormat) Format {
	if bf == gozxing.BarcodeFormat_QR_CODE {
		return FormatQR
	}
	return FormatUnknown
}
