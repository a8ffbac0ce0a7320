package qr

import (
	"fmt"
	"strings"
)

// Level is an error correction level. Higher levels trade capacity for
// redundancy; the zero value is Low.
type Level int

const (
	Low      Level = iota // ~7% of codewords recoverable
	Medium                // ~15%
	Quartile              // ~25%
	High                  // ~30%
)

// Levels lists all levels from least to most redundant.
var Levels = []Level{Low, Medium, Quartile, High}

func (l Level) String() string {
	if l.Valid() {
		return "LMQH"[l : l+1]
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Valid reports whether l is one of the four defined levels.
func (l Level) Valid() bool { return l >= Low && l <= High }

// formatBits returns the two-bit level indicator used in format information.
func (l Level) formatBits() int {
	return [...]int{1, 0, 3, 2}[l]
}

// ParseLevel parses a level name. Single letters (l, m, q, h) and the long
// names are accepted, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "low":
		return Low, nil
	case "m", "medium":
		return Medium, nil
	case "q", "quartile":
		return Quartile, nil
	case "h", "high":
		return High, nil
	default:
		return 0, fmt.Errorf("%w: %q (must be one of: l, m, q, h)", ErrInvalidLevel, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, int(l))
	}
	return []byte(strings.ToLower(l.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	v, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
