package qr

import "strings"

// mode is a segment encoding mode.
type mode struct {
	name      string
	indicator uint
	ccBits    [3]int // character count widths for versions 1-9, 10-26, 27-40
}

var (
	modeNumeric      = &mode{name: "numeric", indicator: 0x1, ccBits: [3]int{10, 12, 14}}
	modeAlphanumeric = &mode{name: "alphanumeric", indicator: 0x2, ccBits: [3]int{9, 11, 13}}
	modeByte         = &mode{name: "byte", indicator: 0x4, ccBits: [3]int{8, 16, 16}}
)

func (m *mode) charCountBits(ver int) int {
	return m.ccBits[(ver+7)/17]
}

const alphanumericCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

// segment is a run of payload characters in a single mode.
type segment struct {
	mode     *mode
	numChars int
	data     bitBuffer
}

// makeSegment picks the most compact of the three modes for the payload.
func makeSegment(payload string) segment {
	switch {
	case payload != "" && isNumeric(payload):
		return numericSegment(payload)
	case payload != "" && isAlphanumeric(payload):
		return alphanumericSegment(payload)
	default:
		return byteSegment([]byte(payload))
	}
}

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isAlphanumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(alphanumericCharset, s[i]) < 0 {
			return false
		}
	}
	return true
}

func numericSegment(s string) segment {
	var bb bitBuffer
	for i := 0; i < len(s); i += 3 {
		end := min(i+3, len(s))
		v := 0
		for _, c := range []byte(s[i:end]) {
			v = v*10 + int(c-'0')
		}
		bb.append(uint(v), (end-i)*3+1)
	}
	return segment{mode: modeNumeric, numChars: len(s), data: bb}
}

func alphanumericSegment(s string) segment {
	var bb bitBuffer
	i := 0
	for ; i+2 <= len(s); i += 2 {
		v := strings.IndexByte(alphanumericCharset, s[i])*45 + strings.IndexByte(alphanumericCharset, s[i+1])
		bb.append(uint(v), 11)
	}
	if i < len(s) {
		bb.append(uint(strings.IndexByte(alphanumericCharset, s[i])), 6)
	}
	return segment{mode: modeAlphanumeric, numChars: len(s), data: bb}
}

func byteSegment(b []byte) segment {
	var bb bitBuffer
	for _, c := range b {
		bb.append(uint(c), 8)
	}
	return segment{mode: modeByte, numChars: len(b), data: bb}
}

// totalBits returns the encoded length of the segment at ver, or -1 when the
// character count does not fit its field.
func (s segment) totalBits(ver int) int {
	cc := s.mode.charCountBits(ver)
	if s.numChars >= 1<<cc {
		return -1
	}
	return 4 + cc + s.data.len()
}

// bitBuffer is an append-only sequence of bits, most significant first.
type bitBuffer struct {
	bits []bool
}

func (b *bitBuffer) len() int { return len(b.bits) }

// append adds the low n bits of v.
func (b *bitBuffer) append(v uint, n int) {
	for i := n - 1; i >= 0; i-- {
		b.bits = append(b.bits, (v>>uint(i))&1 != 0)
	}
}

func (b *bitBuffer) appendBuffer(o bitBuffer) {
	b.bits = append(b.bits, o.bits...)
}

// bytes packs the buffer into bytes; the length must be a multiple of 8.
func (b *bitBuffer) bytes() []byte {
	out := make([]byte, len(b.bits)/8)
	for i, bit := range b.bits {
		if bit {
			out[i>>3] |= 1 << (7 - uint(i&7))
		}
	}
	return out
}

// dataCodewordsFor builds the padded data codeword sequence for seg at the
// given version and level.
func dataCodewordsFor(seg segment, ver int, l Level) []byte {
	capBits := dataCodewords(ver, l) * 8

	var bb bitBuffer
	bb.append(seg.mode.indicator, 4)
	bb.append(uint(seg.numChars), seg.mode.charCountBits(ver))
	bb.appendBuffer(seg.data)

	bb.append(0, min(4, capBits-bb.len()))
	bb.append(0, (8-bb.len()%8)%8)
	for pad := uint(0xEC); bb.len() < capBits; pad ^= 0xEC ^ 0x11 {
		bb.append(pad, 8)
	}
	return bb.bytes()
}
