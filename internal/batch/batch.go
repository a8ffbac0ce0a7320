package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// ProcessBatch reads the URL list named by cfg and generates every payload.
//
// An error is returned only when the batch cannot run (bad configuration,
// unreadable input, output directory not creatable) or is cancelled. Failed
// payloads are reported in the result.
func ProcessBatch(ctx context.Context, cfg *Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid batch configuration: %w", err)
	}
	log := cfg.logger()

	in, err := ReadInput(cfg.InputFile)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
	}

	proc, err := NewProcessor(cfg)
	if err != nil {
		return nil, err
	}

	progress := newProgress(cfg)

	total := len(in.Payloads)
	items := make([]*Item, total)
	workers := cfg.workers()
	log.Info("processing URL list",
		"input", cfg.InputFile, "payloads", total, "skipped", in.Skipped(),
		"output", cfg.OutputDir, "workers", workers)

	start := time.Now()
	progress.OnStart(total)

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, group := range groupByCode(in.Payloads, log) {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// Payloads sharing a file name run in input order so the
			// last one wins deterministically.
			for _, idx := range group {
				if gctx.Err() != nil {
					return nil
				}
				item := proc.Process(gctx, in.Payloads[idx])
				items[idx] = item
				n := int(done.Add(1))
				if !item.OK() {
					progress.OnError(n, item.Err)
				}
				progress.OnProgress(n, total)
			}
			return nil
		})
	}
	_ = g.Wait()
	progress.OnComplete()

	result := &Result{
		Items:       compact(items),
		Skipped:     in.Skipped(),
		Duration:    time.Since(start),
		WorkerCount: workers,
	}
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("batch interrupted after %d of %d payloads: %w", len(result.Items), total, err)
	}
	return result, nil
}

// compact drops payloads that were never processed.
func compact(items []*Item) []*Item {
	out := items[:0]
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}

func newProgress(cfg *Config) ProgressCallback {
	switch {
	case cfg.Progress != nil:
		return cfg.Progress
	case cfg.Quiet:
		return NoOpProgressCallback{}
	case cfg.ShowProgress:
		cb := NewConsoleProgressCallback(cfg.ProgressWriter, "Generating: ")
		if cfg.ProgressInterval > 0 {
			cb = cb.WithUpdateInterval(cfg.ProgressInterval)
		}
		return cb
	default:
		return NewLogProgressCallback(cfg.logger(), 0)
	}
}

// groupByCode partitions payload indices by derived file name code, in
// order of first appearance. Codes shared by several payloads are logged,
// since their files overwrite each other.
func groupByCode(payloads []Payload, log *slog.Logger) [][]int {
	index := make(map[string]int, len(payloads))
	var groups [][]int
	for i, p := range payloads {
		code := sanitize(DeriveCode(p.URL))
		g, ok := index[code]
		if !ok {
			index[code] = len(groups)
			groups = append(groups, []int{i})
			continue
		}
		first := payloads[groups[g][0]]
		log.Warn("file name collision, later payload overwrites earlier files",
			"code", code,
			"payload", p.URL, "line", p.Line,
			"previous", first.URL, "previous_line", first.Line)
		groups[g] = append(groups[g], i)
	}
	return groups
}
