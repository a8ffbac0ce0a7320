package barcode

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/MeKo-Tech/qrbatch/internal/qr"
)

const (
	EngineNative = "native"
	EngineSkip2  = "skip2"
)

// ErrUnknownEngine is returned by NewEngine for unregistered names.
var ErrUnknownEngine = errors.New("barcode: unknown engine")

var engines = map[string]func() Engine{
	EngineNative: func() Engine { return nativeEngine{} },
	EngineSkip2:  func() Engine { return skip2Engine{} },
}

// NewEngine returns the engine registered under name.
func NewEngine(name string) (Engine, error) {
	ctor, ok := engines[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (must be one of: %s)", ErrUnknownEngine, name, strings.Join(EngineNames(), ", "))
	}
	return ctor(), nil
}

// EngineNames lists the registered engine names, sorted.
func EngineNames() []string {
	names := make([]string, 0, len(engines))
	for n := range engines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type nativeEngine struct{}

func (nativeEngine) Name() string { return EngineNative }

func (nativeEngine) Encode(payload string, level qr.Level) (Symbol, error) {
	sym, err := qr.Encode(payload, level)
	if err != nil {
		return nil, err
	}
	return sym, nil
}
