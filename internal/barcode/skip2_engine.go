package barcode

import (
	"fmt"
	"strings"

	skip2 "github.com/skip2/go-qrcode"

	"github.com/MeKo-Tech/qrbatch/internal/qr"
)

type skip2Engine struct{}

func (skip2Engine) Name() string { return EngineSkip2 }

func (skip2Engine) Encode(payload string, level qr.Level) (Symbol, error) {
	rl, err := skip2Level(level)
	if err != nil {
		return nil, &qr.EncodingError{Level: level, Length: len(payload), Err: err}
	}

	code, err := skip2.New(payload, rl)
	if err != nil {
		if strings.Contains(err.Error(), "too long") {
			err = fmt.Errorf("%w: %v", qr.ErrDataTooLong, err)
		}
		return nil, &qr.EncodingError{Level: level, Length: len(payload), Err: err}
	}
	code.DisableBorder = true

	return &bitmapSymbol{version: code.VersionNumber, rows: code.Bitmap()}, nil
}

func skip2Level(l qr.Level) (skip2.RecoveryLevel, error) {
	switch l {
	case qr.Low:
		return skip2.Low, nil
	case qr.Medium:
		return skip2.Medium, nil
	case qr.Quartile:
		return skip2.High, nil
	case qr.High:
		return skip2.Highest, nil
	default:
		return 0, fmt.Errorf("%w: %d", qr.ErrInvalidLevel, int(l))
	}
}

// bitmapSymbol adapts a [row][column] bitmap to Symbol.
type bitmapSymbol struct {
	version int
	rows    [][]bool
}

func (s *bitmapSymbol) Size() int    { return len(s.rows) }
func (s *bitmapSymbol) Version() int { return s.version }

func (s *bitmapSymbol) Dark(x, y int) bool {
	if y < 0 || y >= len(s.rows) || x < 0 || x >= len(s.rows[y]) {
		return false
	}
	return s.rows[y][x]
}
