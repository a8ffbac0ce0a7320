package qr

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genLevel generates one of the four error correction levels.
func genLevel() gopter.Gen {
	return gen.IntRange(int(Low), int(High)).Map(func(v int) Level { return Level(v) })
}

// TestEncode_Deterministic verifies two encodes of a payload are identical.
func TestEncode_Deterministic(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("encoding is deterministic", prop.ForAll(
		func(payload string, level Level) bool {
			a, errA := Encode(payload, level)
			b, errB := Encode(payload, level)
			if errA != nil || errB != nil {
				return errA != nil && errB != nil
			}
			if a.Version() != b.Version() || a.Mask() != b.Mask() || a.Size() != b.Size() {
				return false
			}
			for y := 0; y < a.Size(); y++ {
				for x := 0; x < a.Size(); x++ {
					if a.Dark(x, y) != b.Dark(x, y) {
						return false
					}
				}
			}
			return true
		},
		gen.AnyString(),
		genLevel(),
	))

	properties.TestingRun(t)
}

// TestEncode_MonotonicCapacity verifies success at a level implies success
// at every lower level, never with a larger version.
func TestEncode_MonotonicCapacity(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("lower levels fit whatever higher levels fit", prop.ForAll(
		func(payload string, level Level) bool {
			sym, err := Encode(payload, level)
			if err != nil {
				return true
			}
			for l := Low; l < level; l++ {
				lower, err := Encode(payload, l)
				if err != nil || lower.Version() > sym.Version() {
					return false
				}
			}
			return true
		},
		gen.AlphaString(),
		genLevel(),
	))

	properties.TestingRun(t)
}

// TestEncode_SizeMatchesVersion verifies the grid side is 4*version+17.
func TestEncode_SizeMatchesVersion(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("size is 4v+17", prop.ForAll(
		func(payload string, level Level) bool {
			sym, err := Encode(payload, level)
			if err != nil {
				return false
			}
			return sym.Size() == 4*sym.Version()+17 && len(sym.Bitmap()) == sym.Size()
		},
		gen.AlphaString(),
		genLevel(),
	))

	properties.TestingRun(t)
}
