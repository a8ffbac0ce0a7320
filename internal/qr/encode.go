package qr

// Symbol is a finished QR Code: a square grid of dark and light modules
// without quiet zone.
type Symbol struct {
	version int
	level   Level
	mask    int
	size    int
	modules []bool
}

// Encode builds the smallest symbol that holds payload at level l.
//
// The payload is encoded in numeric mode when it is all digits, in
// alphanumeric mode when every character is in the QR alphanumeric set and
// as UTF-8 bytes otherwise. Payloads too long for version 40 yield an
// *EncodingError wrapping ErrDataTooLong.
func Encode(payload string, l Level) (*Symbol, error) {
	if !l.Valid() {
		return nil, &EncodingError{Level: l, Length: len(payload), Err: ErrInvalidLevel}
	}

	seg := makeSegment(payload)
	ver := 0
	for v := MinVersion; v <= MaxVersion; v++ {
		if n := seg.totalBits(v); n >= 0 && n <= dataCodewords(v, l)*8 {
			ver = v
			break
		}
	}
	if ver == 0 {
		return nil, &EncodingError{Level: l, Mode: seg.mode.name, Length: len(payload), Err: ErrDataTooLong}
	}

	codewords := addECC(dataCodewordsFor(seg, ver, l), ver, l)

	m := newMatrix(ver)
	m.drawFunctionPatterns(ver)
	m.drawCodewords(codewords)
	m, mask := chooseMask(m, l)

	return &Symbol{
		version: ver,
		level:   l,
		mask:    mask,
		size:    m.size,
		modules: m.modules,
	}, nil
}

// Size returns the side length in modules, 4*version+17.
func (s *Symbol) Size() int { return s.size }

// Version returns the symbol version, 1 through 40.
func (s *Symbol) Version() int { return s.version }

// Level returns the error correction level the symbol was encoded with.
func (s *Symbol) Level() Level { return s.level }

// Mask returns the index of the applied data mask.
func (s *Symbol) Mask() int { return s.mask }

// Dark reports whether the module at column x, row y is dark. Coordinates
// outside the symbol read as light, which matches the quiet zone.
func (s *Symbol) Dark(x, y int) bool {
	if x < 0 || y < 0 || x >= s.size || y >= s.size {
		return false
	}
	return s.modules[y*s.size+x]
}

// Bitmap returns a copy of the grid indexed [row][column].
func (s *Symbol) Bitmap() [][]bool {
	out := make([][]bool, s.size)
	for y := range out {
		out[y] = append([]bool(nil), s.modules[y*s.size:(y+1)*s.size]...)
	}
	return out
}

// Capacity returns the number of data bytes a byte-mode payload may have at
// version ver and level l.
func Capacity(ver int, l Level) int {
	if ver < MinVersion || ver > MaxVersion || !l.Valid() {
		return 0
	}
	bits := dataCodewords(ver, l)*8 - 4 - modeByte.charCountBits(ver)
	return bits / 8
}
