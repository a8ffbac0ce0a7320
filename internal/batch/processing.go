package batch

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/MeKo-Tech/qrbatch/internal/barcode"
	"github.com/MeKo-Tech/qrbatch/internal/qr"
	"github.com/MeKo-Tech/qrbatch/internal/raster"
)

// Processor turns single payloads into PNG files.
type Processor struct {
	engine    barcode.Engine
	decoder   barcode.Decoder // nil unless verification is enabled
	level     qr.Level
	sizes     []int
	border    int
	outputDir string
	logger    *slog.Logger

	stage func(path string, img image.Image) (string, error)
}

// NewProcessor builds a processor from cfg. It does not touch the file
// system.
func NewProcessor(cfg *Config) (*Processor, error) {
	engine, err := barcode.NewEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	p := &Processor{
		engine:    engine,
		level:     cfg.Level,
		sizes:     uniqueSizes(cfg.Sizes),
		border:    cfg.Border,
		outputDir: cfg.OutputDir,
		logger:    cfg.logger(),
		stage:     raster.StagePNG,
	}
	if cfg.Verify {
		p.decoder = barcode.NewDecoder()
	}
	return p, nil
}

// Process encodes, renders and writes one payload. Errors are recorded on
// the returned item; on failure no files of the payload remain.
func (p *Processor) Process(ctx context.Context, pl Payload) *Item {
	start := time.Now()
	item := &Item{Line: pl.Line, Payload: pl.URL, Code: DeriveCode(pl.URL)}
	defer func() { item.Duration = time.Since(start) }()

	log := p.logger.With("line", pl.Line, "payload", pl.URL, "code", item.Code)

	images, version, err := p.render(ctx, pl.URL, log)
	if err == nil {
		item.Version = version
		item.Files, err = p.write(item.Code, images)
	}
	if err != nil {
		item.fail(err)
		log.Error("failed to generate QR code", "error", err)
		return item
	}

	log.Info("generated QR code", "version", version, "files", len(item.Files))
	return item
}

// render produces one image per size, in memory.
func (p *Processor) render(ctx context.Context, payload string, log *slog.Logger) ([]*raster.Image, int, error) {
	sym, err := p.engine.Encode(payload, p.level)
	if err != nil {
		return nil, 0, err
	}

	images := make([]*raster.Image, 0, len(p.sizes))
	for _, size := range p.sizes {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		img, err := raster.Rasterize(sym, p.border, size)
		if err != nil {
			return nil, 0, fmt.Errorf("size %d: %w", size, err)
		}
		if img.ModulePixels() < 1 {
			log.Warn("image is smaller than one pixel per module and may not scan",
				"size", size, "modules", img.Modules)
		}
		if p.decoder != nil {
			if err := barcode.Verify(ctx, p.decoder, img, payload); err != nil {
				return nil, 0, fmt.Errorf("size %d: %w", size, err)
			}
		}
		images = append(images, img)
	}
	return images, sym.Version(), nil
}

// write saves the images. All of them are staged under temporary names
// first, so a failure while encoding leaves existing files untouched,
// including those of an earlier payload with the same code. Only a failed
// rename removes files already moved into place.
func (p *Processor) write(code string, images []*raster.Image) ([]string, error) {
	paths := make([]string, len(images))
	staged := make([]string, 0, len(images))
	discard := func(names []string) {
		for _, name := range names {
			_ = os.Remove(name)
		}
	}

	for i, img := range images {
		paths[i] = filepath.Join(p.outputDir, FileName(code, p.sizes[i]))
		tmp, err := p.stage(paths[i], img)
		if err != nil {
			discard(staged)
			return nil, err
		}
		staged = append(staged, tmp)
	}

	for i, tmp := range staged {
		if err := os.Rename(tmp, paths[i]); err != nil {
			discard(staged[i:])
			discard(paths[:i])
			return nil, fmt.Errorf("failed to rename %s to %s: %w", tmp, paths[i], err)
		}
	}
	return paths, nil
}
