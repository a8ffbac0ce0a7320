package testutil

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png" // register PNG decoder
	"os"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/require"
)

// Grid is a square module grid such as a QR symbol.
type Grid interface {
	Size() int
	Dark(x, y int) bool
}

// RenderGrid draws g with a light quiet zone of border modules, scale
// pixels per module. It is independent of the production rasterizer so
// encoder tests can decode symbols directly.
func RenderGrid(g Grid, border, scale int) *image.Gray {
	n := (g.Size() + 2*border) * scale
	img := image.NewGray(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			mx, my := x/scale-border, y/scale-border
			c := color.Gray{Y: 0xff}
			if mx >= 0 && my >= 0 && mx < g.Size() && my < g.Size() && g.Dark(mx, my) {
				c.Y = 0
			}
			img.SetGray(x, y, c)
		}
	}
	return img
}

// DecodeQR decodes a single QR code from img and returns its text.
func DecodeQR(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to binarize image: %w", err)
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	res, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("failed to decode QR code: %w", err)
	}
	return res.GetText(), nil
}

// RequireDecode decodes img and fails the test when no QR code is found.
func RequireDecode(t *testing.T, img image.Image) string {
	t.Helper()

	text, err := DecodeQR(img)
	require.NoError(t, err)
	return text
}

// LoadImageFile loads an image from the specified path.
func LoadImageFile(path string) (image.Image, error) {
	file, err := os.Open(path) //nolint:gosec // G304: test helper reads generated files
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return img, nil
}
