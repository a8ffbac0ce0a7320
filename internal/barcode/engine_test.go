package barcode

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/qrbatch/internal/qr"
	"github.com/MeKo-Tech/qrbatch/internal/raster"
)

func TestNewEngine(t *testing.T) {
	for _, name := range []string{"native", "skip2", " Native "} {
		eng, err := NewEngine(name)
		require.NoError(t, err, name)
		assert.Equal(t, strings.ToLower(strings.TrimSpace(name)), eng.Name())
	}

	_, err := NewEngine("zint")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownEngine)
	assert.Contains(t, err.Error(), "native, skip2")
}

func TestEngineNames(t *testing.T) {
	assert.Equal(t, []string{"native", "skip2"}, EngineNames())
}

func TestEngines_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dec := NewDecoder()
	const url = "https://example.com/abcd"

	for _, name := range EngineNames() {
		eng, err := NewEngine(name)
		require.NoError(t, err)

		for _, level := range qr.Levels {
			sym, err := eng.Encode(url, level)
			require.NoError(t, err, "%s/%s", name, level)
			assert.Equal(t, 4*sym.Version()+17, sym.Size(), "%s/%s", name, level)

			img, err := raster.Rasterize(sym, 4, 270)
			require.NoError(t, err)
			assert.NoError(t, Verify(ctx, dec, img, url), "%s/%s", name, level)
		}
	}
}

func TestEngines_TooLong(t *testing.T) {
	payload := strings.Repeat("z", 3000)
	for _, name := range EngineNames() {
		eng, err := NewEngine(name)
		require.NoError(t, err)

		_, err = eng.Encode(payload, qr.Low)
		require.Error(t, err, name)

		var encErr *qr.EncodingError
		assert.True(t, errors.As(err, &encErr), name)
		assert.ErrorIs(t, err, qr.ErrDataTooLong, name)
	}
}

func TestSkip2Level(t *testing.T) {
	_, err := skip2Level(qr.Level(9))
	assert.ErrorIs(t, err, qr.ErrInvalidLevel)
}

func TestBitmapSymbol_OutOfRange(t *testing.T) {
	s := &bitmapSymbol{version: 1, rows: [][]bool{{true, false}, {false, true}}}
	assert.Equal(t, 2, s.Size())
	assert.True(t, s.Dark(0, 0))
	assert.True(t, s.Dark(1, 1))
	assert.False(t, s.Dark(-1, 0))
	assert.False(t, s.Dark(2, 1))
}
