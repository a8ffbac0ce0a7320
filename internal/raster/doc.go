// Package raster turns module grids into fixed-size bitmaps.
//
// Modules are first drawn at one pixel each with a light quiet zone, scaled
// up by an integer factor with nearest-neighbor sampling and finally resized
// to the exact target size, again with nearest-neighbor sampling. Every
// output pixel is pure black or pure white; no anti-aliasing is introduced.
package raster
