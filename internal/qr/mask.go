package qr

// NumMasks is the number of data mask patterns.
const NumMasks = 8

// Penalty weights for the four mask evaluation rules.
const (
	penaltyN1 = 3
	penaltyN2 = 3
	penaltyN3 = 40
	penaltyN4 = 10
)

// maskBit reports whether mask pattern k inverts the module at row i,
// column j.
func maskBit(k, i, j int) bool {
	switch k {
	case 0:
		return (i+j)%2 == 0
	case 1:
		return i%2 == 0
	case 2:
		return j%3 == 0
	case 3:
		return (i+j)%3 == 0
	case 4:
		return (i/2+j/3)%2 == 0
	case 5:
		return (i*j)%2+(i*j)%3 == 0
	case 6:
		return ((i*j)%2+(i*j)%3)%2 == 0
	case 7:
		return ((i+j)%2+(i*j)%3)%2 == 0
	}
	panic("qr: invalid mask")
}

// applyMask XORs mask k onto every data module.
func (m *matrix) applyMask(k int) {
	for y := 0; y < m.size; y++ {
		for x := 0; x < m.size; x++ {
			if !m.isFunction(x, y) && maskBit(k, y, x) {
				m.set(x, y, !m.get(x, y))
			}
		}
	}
}

// chooseMask tries all masks on m (data placed, unmasked) and returns the
// finished grid with the lowest penalty. Ties keep the lower mask index.
func chooseMask(m *matrix, l Level) (*matrix, int) {
	var best *matrix
	bestMask, bestScore := 0, -1
	for k := range NumMasks {
		c := m.clone()
		c.applyMask(k)
		c.drawFormatBits(l, k)
		if s := c.penalty(); bestScore < 0 || s < bestScore {
			best, bestMask, bestScore = c, k, s
		}
	}
	return best, bestMask
}

// penalty scores the grid; lower is better.
func (m *matrix) penalty() int {
	return m.penaltyRuns() + m.penaltyBlocks() + m.penaltyFinderLike() + m.penaltyBalance()
}

// penaltyRuns scores runs of five or more same-colored modules in rows and
// columns.
func (m *matrix) penaltyRuns() int {
	score := 0
	for _, horizontal := range []bool{true, false} {
		for i := 0; i < m.size; i++ {
			run := 0
			var prev bool
			for j := 0; j < m.size; j++ {
				v := m.at(horizontal, i, j)
				if j > 0 && v == prev {
					run++
					continue
				}
				if run >= 5 {
					score += penaltyN1 + run - 5
				}
				run, prev = 1, v
			}
			if run >= 5 {
				score += penaltyN1 + run - 5
			}
		}
	}
	return score
}

// penaltyBlocks scores every 2x2 block of one color.
func (m *matrix) penaltyBlocks() int {
	score := 0
	for y := 0; y < m.size-1; y++ {
		for x := 0; x < m.size-1; x++ {
			v := m.get(x, y)
			if v == m.get(x+1, y) && v == m.get(x, y+1) && v == m.get(x+1, y+1) {
				score += penaltyN2
			}
		}
	}
	return score
}

var finderLike = [7]bool{true, false, true, true, true, false, true}

// penaltyFinderLike scores 1:1:3:1:1 dark-light patterns that have four
// light modules on at least one side. Modules outside the grid count as
// light.
func (m *matrix) penaltyFinderLike() int {
	score := 0
	for _, horizontal := range []bool{true, false} {
		for i := 0; i < m.size; i++ {
			for j := 0; j+6 < m.size; j++ {
				match := true
				for k, want := range finderLike {
					if m.at(horizontal, i, j+k) != want {
						match = false
						break
					}
				}
				if match && (m.lightSpan(horizontal, i, j-4, j) || m.lightSpan(horizontal, i, j+7, j+11)) {
					score += penaltyN3
				}
			}
		}
	}
	return score
}

// penaltyBalance scores the deviation of the dark ratio from 50%, per full
// 5% step.
func (m *matrix) penaltyBalance() int {
	dark := 0
	for _, v := range m.modules {
		if v {
			dark++
		}
	}
	total := len(m.modules)
	return abs(dark*2-total) * 10 / total * penaltyN4
}

// at reads line i at position j, along a row when horizontal is set and
// along a column otherwise.
func (m *matrix) at(horizontal bool, i, j int) bool {
	if horizontal {
		return m.get(j, i)
	}
	return m.get(i, j)
}

// lightSpan reports whether positions [from, to) of line i are all light,
// clamped to the grid.
func (m *matrix) lightSpan(horizontal bool, i, from, to int) bool {
	from = max(from, 0)
	to = min(to, m.size)
	for j := from; j < to; j++ {
		if m.at(horizontal, i, j) {
			return false
		}
	}
	return true
}
