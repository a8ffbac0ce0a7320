package batch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/MeKo-Tech/qrbatch/internal/qr"
)

// DefaultSizes are the output resolutions in pixels.
var DefaultSizes = []int{270, 360, 450}

const (
	DefaultBorder    = 4
	DefaultInputFile = "URL_List.txt"
	DefaultOutputDir = "QR_generate"
)

// Config holds all configuration for batch processing.
type Config struct {
	InputFile string
	OutputDir string

	// Encoding settings
	Level  qr.Level
	Sizes  []int
	Border int
	Engine string
	Verify bool

	Workers int

	// Progress settings
	ShowProgress     bool
	Quiet            bool
	ProgressInterval time.Duration
	ProgressWriter   io.Writer
	Progress         ProgressCallback // overrides the built-in reporters when set

	Logger *slog.Logger
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		InputFile: DefaultInputFile,
		OutputDir: DefaultOutputDir,
		Level:     qr.Medium,
		Sizes:     append([]int(nil), DefaultSizes...),
		Border:    DefaultBorder,
		Engine:    "native",
		Workers:   runtime.NumCPU(),
	}
}

func (c *Config) validate() error {
	if c.InputFile == "" {
		return errors.New("input file is required")
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	if len(c.Sizes) == 0 {
		return errors.New("at least one size is required")
	}
	if !c.Level.Valid() {
		return fmt.Errorf("%w: %d", qr.ErrInvalidLevel, int(c.Level))
	}
	return nil
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// uniqueSizes returns the sizes in order with duplicates removed.
func uniqueSizes(sizes []int) []int {
	seen := make(map[int]bool, len(sizes))
	out := make([]int, 0, len(sizes))
	for _, s := range sizes {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Item is the outcome for one payload.
type Item struct {
	Line     int           `json:"line" yaml:"line"`
	Payload  string        `json:"payload" yaml:"payload"`
	Code     string        `json:"code" yaml:"code"`
	Version  int           `json:"version,omitempty" yaml:"version,omitempty"`
	Files    []string      `json:"files,omitempty" yaml:"files,omitempty"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration_ns" yaml:"duration"`

	Err error `json:"-" yaml:"-"`
}

// OK reports whether the payload was generated.
func (it *Item) OK() bool { return it.Err == nil }

func (it *Item) fail(err error) {
	it.Err = err
	it.Error = err.Error()
}

// Result holds the result of batch processing. Items are in input order.
type Result struct {
	Items       []*Item
	Skipped     int
	Duration    time.Duration
	WorkerCount int
}

// Failed returns the items that did not produce files.
func (r *Result) Failed() []*Item {
	var out []*Item
	for _, it := range r.Items {
		if !it.OK() {
			out = append(out, it)
		}
	}
	return out
}

// FormatResults formats the batch processing results in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r, format)
}

// SaveResults writes the formatted results to outputFile, or to w when
// outputFile is empty.
func (r *Result) SaveResults(w io.Writer, format, outputFile string, quiet bool) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile == "" {
		_, err = fmt.Fprint(w, output)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if !quiet {
		_, _ = fmt.Fprintf(w, "Results written to %s\n", outputFile)
	}
	return nil
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(w io.Writer, quiet bool) {
	if quiet {
		return
	}
	stats := r.Stats()
	_, _ = fmt.Fprintf(w, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(w, "  Total payloads: %d\n", stats.TotalPayloads)
	_, _ = fmt.Fprintf(w, "  Generated: %d\n", stats.Generated)
	_, _ = fmt.Fprintf(w, "  Failed: %d\n", stats.Failed)
	_, _ = fmt.Fprintf(w, "  Skipped lines: %d\n", stats.Skipped)
	_, _ = fmt.Fprintf(w, "  Files written: %d\n", stats.Files)
	_, _ = fmt.Fprintf(w, "  Workers: %d\n", stats.WorkerCount)
	_, _ = fmt.Fprintf(w, "  Duration: %v\n", stats.TotalDuration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "  Avg per payload: %v\n", stats.AveragePerPayload.Round(time.Microsecond))
	_, _ = fmt.Fprintf(w, "  Throughput: %.1f payloads/sec\n", stats.ThroughputPerSec)
}
