package support

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/qrbatch/internal/testutil"
)

// checkQR verifies dimensions and decoded content of a QR image.
func checkQR(img image.Image, width, height int, want string) error {
	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return fmt.Errorf("expected %dx%d image, got %dx%d", width, height, b.Dx(), b.Dy())
	}
	got, err := testutil.DecodeQR(img)
	if err != nil {
		return fmt.Errorf("failed to decode QR code: %w", err)
	}
	if got != want {
		return fmt.Errorf("decoded %q, want %q", got, want)
	}
	return nil
}

func (testCtx *TestContext) theImageShouldBeAQRCodeFor(name string, width, height int, want string) error {
	img, err := testutil.LoadImageFile(testCtx.path(name))
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", name, err)
	}
	return checkQR(img, width, height, want)
}

func (testCtx *TestContext) theOutputShouldBeAQRCodeFor(width, height int, want string) error {
	img, err := png.Decode(bytes.NewReader([]byte(testCtx.LastOutput)))
	if err != nil {
		return fmt.Errorf("output is not a PNG: %w", err)
	}
	return checkQR(img, width, height, want)
}

// RegisterImageSteps registers image verification steps.
func (testCtx *TestContext) RegisterImageSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the image "([^"]*)" should be a (\d+)x(\d+) QR code for "([^"]*)"$`, testCtx.theImageShouldBeAQRCodeFor)
	sc.Step(`^the output should be a (\d+)x(\d+) QR code for "([^"]*)"$`, testCtx.theOutputShouldBeAQRCodeFor)
}
