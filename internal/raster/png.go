package raster

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// EncodePNG writes img to w as a best-compression PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return &RasterError{Operation: "encode png", Err: err}
	}
	return nil
}

// SavePNG writes img to path. The file is written under a temporary name in
// the same directory and renamed into place, so readers never see a partial
// image.
func SavePNG(path string, img image.Image) error {
	tmpName, err := StagePNG(path, img)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to rename %s to %s: %w", tmpName, path, err)
	}
	return nil
}

// StagePNG writes img to a hidden temporary file next to path and returns
// its name. The caller renames it into place or removes it.
func StagePNG(path string, img image.Image) (string, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if err := EncodePNG(tmp, img); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // G302: generated images are meant to be shared
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	return tmpName, nil
}
