package qr

import "rsc.io/qr/gf256"

// field is GF(256) with the QR generator polynomial x^8+x^4+x^3+x^2+1.
var field = gf256.NewField(0x11d, 2)

// addECC splits data into blocks, computes the check codewords for each and
// returns the interleaved codeword sequence ready for placement.
func addECC(data []byte, ver int, l Level) []byte {
	nblocks := numBlocks[l][ver]
	eccLen := eccPerBlock[l][ver]
	rawCodewords := rawDataModules(ver) / 8
	numShort := nblocks - rawCodewords%nblocks
	shortLen := rawCodewords/nblocks - eccLen

	// Encoders hold scratch state, so each call gets its own.
	rs := gf256.NewRSEncoder(field, eccLen)

	dataBlocks := make([][]byte, nblocks)
	eccBlocks := make([][]byte, nblocks)
	k := 0
	for i := range nblocks {
		n := shortLen
		if i >= numShort {
			n++
		}
		dataBlocks[i] = data[k : k+n]
		k += n
		eccBlocks[i] = make([]byte, eccLen)
		rs.ECC(dataBlocks[i], eccBlocks[i])
	}

	out := make([]byte, 0, rawCodewords)
	for i := 0; i <= shortLen; i++ {
		for j, blk := range dataBlocks {
			if i < shortLen || j >= numShort {
				out = append(out, blk[i])
			}
		}
	}
	for i := range eccLen {
		for _, blk := range eccBlocks {
			out = append(out, blk[i])
		}
	}
	return out
}
