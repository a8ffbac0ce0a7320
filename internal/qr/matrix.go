package qr

// matrix is a mutable module grid under construction. Modules marked as
// function modules are never touched by data placement or masking.
type matrix struct {
	size     int
	modules  []bool
	function []bool
}

func newMatrix(ver int) *matrix {
	n := sizeForVersion(ver)
	return &matrix{
		size:     n,
		modules:  make([]bool, n*n),
		function: make([]bool, n*n),
	}
}

func (m *matrix) get(x, y int) bool { return m.modules[y*m.size+x] }

func (m *matrix) isFunction(x, y int) bool { return m.function[y*m.size+x] }

func (m *matrix) set(x, y int, dark bool) { m.modules[y*m.size+x] = dark }

func (m *matrix) setFunction(x, y int, dark bool) {
	m.modules[y*m.size+x] = dark
	m.function[y*m.size+x] = true
}

func (m *matrix) clone() *matrix {
	c := &matrix{size: m.size, function: m.function}
	c.modules = append([]bool(nil), m.modules...)
	return c
}

// drawFunctionPatterns places every non-data pattern for ver. Format bits
// are written with a placeholder so the area is reserved; the real values
// are filled in once the mask is chosen.
func (m *matrix) drawFunctionPatterns(ver int) {
	for i := 0; i < m.size; i++ {
		m.setFunction(6, i, i%2 == 0)
		m.setFunction(i, 6, i%2 == 0)
	}

	m.drawFinder(3, 3)
	m.drawFinder(m.size-4, 3)
	m.drawFinder(3, m.size-4)

	pos := alignmentPositions(ver)
	last := len(pos) - 1
	for i, cy := range pos {
		for j, cx := range pos {
			if (i == 0 && j == 0) || (i == 0 && j == last) || (i == last && j == 0) {
				continue
			}
			m.drawAlignment(cx, cy)
		}
	}

	m.drawFormatBits(Low, 0)
	m.drawVersion(ver)
}

// drawFinder draws a 7x7 finder centered at (cx, cy) with its one-module
// light separator, clipped to the symbol.
func (m *matrix) drawFinder(cx, cy int) {
	for dy := -4; dy <= 4; dy++ {
		for dx := -4; dx <= 4; dx++ {
			x, y := cx+dx, cy+dy
			if x < 0 || x >= m.size || y < 0 || y >= m.size {
				continue
			}
			d := max(abs(dx), abs(dy))
			m.setFunction(x, y, d != 2 && d != 4)
		}
	}
}

func (m *matrix) drawAlignment(cx, cy int) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			m.setFunction(cx+dx, cy+dy, max(abs(dx), abs(dy)) != 1)
		}
	}
}

// formatBits returns the 15-bit BCH-protected format word for level and mask.
func formatBits(l Level, mask int) int {
	data := l.formatBits()<<3 | mask
	rem := data
	for range 10 {
		rem = (rem << 1) ^ ((rem >> 9) * 0x537)
	}
	return (data<<10 | rem) ^ 0x5412
}

// versionBits returns the 18-bit BCH-protected version word.
func versionBits(ver int) int {
	rem := ver
	for range 12 {
		rem = (rem << 1) ^ ((rem >> 11) * 0x1F25)
	}
	return ver<<12 | rem
}

func (m *matrix) drawFormatBits(l Level, mask int) {
	bits := formatBits(l, mask)
	bit := func(i int) bool { return (bits>>uint(i))&1 != 0 }

	// First copy, around the top-left finder.
	for i := 0; i <= 5; i++ {
		m.setFunction(8, i, bit(i))
	}
	m.setFunction(8, 7, bit(6))
	m.setFunction(8, 8, bit(7))
	m.setFunction(7, 8, bit(8))
	for i := 9; i < 15; i++ {
		m.setFunction(14-i, 8, bit(i))
	}

	// Second copy, split between the other two finders.
	for i := 0; i < 8; i++ {
		m.setFunction(m.size-1-i, 8, bit(i))
	}
	for i := 8; i < 15; i++ {
		m.setFunction(8, m.size-15+i, bit(i))
	}
	m.setFunction(8, m.size-8, true)
}

func (m *matrix) drawVersion(ver int) {
	if ver < 7 {
		return
	}
	bits := versionBits(ver)
	for i := 0; i < 18; i++ {
		dark := (bits>>uint(i))&1 != 0
		a := m.size - 11 + i%3
		b := i / 3
		m.setFunction(a, b, dark)
		m.setFunction(b, a, dark)
	}
}

// drawCodewords places the codeword bits in the two-column zigzag that
// starts at the bottom-right corner, skipping the vertical timing column.
// Modules left over after the last bit are remainder bits and stay light.
func (m *matrix) drawCodewords(data []byte) {
	i := 0
	total := len(data) * 8
	for right := m.size - 1; right >= 1; right -= 2 {
		if right == 6 {
			right = 5
		}
		for vert := 0; vert < m.size; vert++ {
			for j := 0; j < 2; j++ {
				x := right - j
				upward := (right+1)&2 == 0
				y := vert
				if upward {
					y = m.size - 1 - vert
				}
				if m.isFunction(x, y) || i >= total {
					continue
				}
				m.set(x, y, (data[i>>3]>>(7-uint(i&7)))&1 != 0)
				i++
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
