package raster_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/MeKo-Tech/qrbatch/internal/raster"
)

// TestRasterize_SizeInvariant verifies output is always size x size.
func TestRasterize_SizeInvariant(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("output is exactly size x size", prop.ForAll(
		func(modules, border, size int) bool {
			img, err := raster.Rasterize(solid{n: modules, dark: true}, border, size)
			if err != nil {
				return false
			}
			b := img.Bounds()
			return b.Dx() == size && b.Dy() == size && img.Scale*img.Modules >= size
		},
		gen.IntRange(21, 177),
		gen.IntRange(0, 10),
		gen.IntRange(1, 800),
	))

	properties.TestingRun(t)
}

// TestRasterize_InvalidAlwaysFails verifies bad parameters never render.
func TestRasterize_InvalidAlwaysFails(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("non-positive size or negative border fails", prop.ForAll(
		func(border, size int) bool {
			img, err := raster.Rasterize(solid{n: 21}, border, size)
			return img == nil && err != nil
		},
		gen.IntRange(-10, 10),
		gen.IntRange(-500, 0),
	))
	properties.Property("negative border fails", prop.ForAll(
		func(border, size int) bool {
			img, err := raster.Rasterize(solid{n: 21}, border, size)
			return img == nil && err != nil
		},
		gen.IntRange(-10, -1),
		gen.IntRange(1, 500),
	))

	properties.TestingRun(t)
}
