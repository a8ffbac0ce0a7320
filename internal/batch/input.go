package batch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrInputNotFound is returned when the URL list does not exist.
var ErrInputNotFound = errors.New("input file not found")

const maxLineLength = 1 << 20

// Payload is one URL from the input list.
type Payload struct {
	Line int    // 1-based line number in the input
	URL  string // trimmed, never empty
}

// Input is a parsed URL list.
type Input struct {
	Payloads []Payload
	Lines    int // lines read, including blank ones
}

// Skipped returns the number of blank lines.
func (in *Input) Skipped() int { return in.Lines - len(in.Payloads) }

// ReadInput reads the URL list at path.
func ReadInput(path string) (*Input, error) {
	f, err := os.Open(path) //nolint:gosec // G304: input path comes from the user
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("failed to open input file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	in, err := ParseInput(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %s: %w", path, err)
	}
	return in, nil
}

// ParseInput splits r into payloads, one per line. Lines are trimmed of
// surrounding whitespace; blank lines are skipped. A leading UTF-8 byte
// order mark is ignored.
func ParseInput(r io.Reader) (*Input, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	in := &Input{}
	for sc.Scan() {
		in.Lines++
		line := sc.Text()
		if in.Lines == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		in.Payloads = append(in.Payloads, Payload{Line: in.Lines, URL: line})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return in, nil
}
