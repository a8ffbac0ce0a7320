// Package barcode provides pluggable QR symbol engines and a decoder used
// to verify rendered images.
//
// Engines turn a payload into a module grid. The "native" engine is the
// in-tree encoder from package qr; "skip2" delegates to
// github.com/skip2/go-qrcode. Both produce grids that package raster can
// render.
//
// The Decoder is backed by github.com/makiuchi-d/gozxing and reads QR codes
// back out of images. Verify combines the two to prove a rendered image
// scans to the expected payload.
//
// Example:
//
//	eng, _ := barcode.NewEngine("native")
//	sym, _ := eng.Encode("https://example.com/abcd", qr.Medium)
//	img, _ := raster.Rasterize(sym, 4, 270)
//	err := barcode.Verify(ctx, barcode.NewDecoder(), img, "https://example.com/abcd")
package barcode
