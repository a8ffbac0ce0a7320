package raster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Grid is a read-only square module grid. Dark must report false for
// coordinates outside [0, Size()).
type Grid interface {
	Size() int
	Dark(x, y int) bool
}

const (
	// MaxSide bounds the target size and the module count per side,
	// quiet zone included. The intermediate bitmap is then at most
	// 2*MaxSide pixels wide.
	MaxSide = 4096
	// MaxBorder is the widest quiet zone Rasterize accepts, in modules.
	MaxBorder = 256
)

var (
	light = color.Gray{Y: 0xff}
	dark  = color.Gray{Y: 0x00}
)

// Image is a rasterized grid, exactly Size x Size pixels.
type Image struct {
	*image.NRGBA

	// Size is the side length in pixels.
	Size int
	// Scale is the integer pixels-per-module factor applied before the
	// final resize.
	Scale int
	// Modules is the side length in modules, quiet zone included.
	Modules int
}

// ModulePixels returns the effective side length of one module in the
// output. Values below 1 mean modules were dropped by the final resize and
// the image is unlikely to scan.
func (img *Image) ModulePixels() float64 {
	return float64(img.Size) / float64(img.Modules)
}

// Rasterize renders g with a quiet zone of border modules into a size x size
// image.
//
// The intermediate bitmap uses s = ceil(size / (g.Size()+2*border)) pixels
// per module, so it is never smaller than the target; the final step
// samples it down with nearest-neighbor.
func Rasterize(g Grid, border, size int) (*Image, error) {
	if g == nil {
		return nil, &RasterError{Operation: "rasterize", Err: ErrNilGrid}
	}
	if size <= 0 {
		return nil, &RasterError{Operation: "rasterize", Err: fmt.Errorf("%w: %d", ErrInvalidSize, size)}
	}
	if size > MaxSide {
		return nil, &RasterError{Operation: "rasterize",
			Err: fmt.Errorf("%w: size %d exceeds %d", ErrImageTooLarge, size, MaxSide)}
	}
	if border < 0 {
		return nil, &RasterError{Operation: "rasterize", Err: fmt.Errorf("%w: %d", ErrInvalidBorder, border)}
	}
	if border > MaxBorder {
		return nil, &RasterError{Operation: "rasterize",
			Err: fmt.Errorf("%w: border %d exceeds %d modules", ErrImageTooLarge, border, MaxBorder)}
	}
	n := g.Size()
	if n <= 0 {
		return nil, &RasterError{Operation: "rasterize", Err: ErrEmptyGrid}
	}
	if n > MaxSide {
		return nil, &RasterError{Operation: "rasterize",
			Err: fmt.Errorf("%w: grid of %d modules exceeds %d", ErrImageTooLarge, n, MaxSide)}
	}
	total := n + 2*border
	if total > MaxSide {
		return nil, &RasterError{Operation: "rasterize",
			Err: fmt.Errorf("%w: %d modules per side exceeds %d", ErrImageTooLarge, total, MaxSide)}
	}

	scale := (size + total - 1) / total

	base := renderModules(g, border, total)
	scaled := image.NewGray(image.Rect(0, 0, total*scale, total*scale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), base, base.Bounds(), draw.Src, nil)

	return &Image{
		NRGBA:   imaging.Resize(scaled, size, size, imaging.NearestNeighbor),
		Size:    size,
		Scale:   scale,
		Modules: total,
	}, nil
}

// renderModules draws one pixel per module, quiet zone included.
func renderModules(g Grid, border, total int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, total, total))
	for y := 0; y < total; y++ {
		for x := 0; x < total; x++ {
			c := light
			if g.Dark(x-border, y-border) {
				c = dark
			}
			img.SetGray(x, y, c)
		}
	}
	return img
}
