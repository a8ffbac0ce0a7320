// Package qr builds QR Code (model 2) symbols.
//
// Encode picks the segment mode for a payload, selects the smallest version
// that fits at the requested error correction level, computes Reed-Solomon
// check codewords, places function patterns and data in the module grid and
// applies the mask with the lowest penalty score.
//
// The returned Symbol is immutable and safe for concurrent readers.
//
//	sym, err := qr.Encode("https://example.com/abcd", qr.Medium)
//	if err != nil {
//		// *qr.EncodingError when the payload does not fit version 40
//	}
//	fmt.Println(sym.Version(), sym.Size()) // 2 25
package qr
