package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/qrbatch/internal/barcode"
	"github.com/MeKo-Tech/qrbatch/internal/batch"
	"github.com/MeKo-Tech/qrbatch/internal/config"
)

func newGenerateCmd(a *app) *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate QR code images for every URL in a list",
		Long: `Read a URL list (one URL per line, blank lines skipped) and write one
PNG per URL and size into the output directory.

A URL that cannot be encoded is reported and skipped; the remaining URLs are
still generated. The command fails only when the batch cannot run at all,
for example when the input file is missing.

Examples:
  qrbatch generate
  qrbatch generate -i links.txt -o codes
  qrbatch generate -e h --sizes 270,540 --border 2 --verify
  qrbatch generate --format json --report report.json --stats`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd)
		},
	}

	f := generateCmd.Flags()
	f.StringP("input", "i", batch.DefaultInputFile, "URL list file, one URL per line")
	f.StringP("output", "o", batch.DefaultOutputDir, "output directory for generated images")
	f.StringP("error-level", "e", "m", "error correction level: l, m, q, h")
	f.IntSlice("sizes", batch.DefaultSizes, "output image sizes in pixels")
	f.Int("border", batch.DefaultBorder, "quiet zone width in modules")
	f.String("engine", barcode.EngineNative, "symbol encoder: "+strings.Join(barcode.EngineNames(), ", "))
	f.IntP("workers", "w", 0, fmt.Sprintf("number of parallel workers (default: %d)", runtime.NumCPU()))
	f.Bool("verify", false, "decode every image after writing and fail the URL on mismatch")

	// Progress and reporting flags
	f.Bool("progress", false, "show progress bar")
	f.Duration("progress-interval", 100*time.Millisecond, "progress update interval")
	f.StringP("format", "f", "text", "report format: "+strings.Join(batch.Formats, ", "))
	f.String("report", "", "write the report to this file instead of stdout")
	f.BoolP("quiet", "q", false, "suppress progress and report output")
	f.Bool("stats", false, "show processing statistics")

	return generateCmd
}

// applyGenerateFlags overrides cfg with explicitly set generate flags.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) {
	overrideString(cmd, "input", &cfg.Batch.Input)
	overrideString(cmd, "output", &cfg.Batch.OutputDir)
	overrideString(cmd, "error-level", &cfg.QR.ErrorLevel)
	overrideInts(cmd, "sizes", &cfg.QR.Sizes)
	overrideInt(cmd, "border", &cfg.QR.Border)
	overrideString(cmd, "engine", &cfg.QR.Engine)
	overrideInt(cmd, "workers", &cfg.Batch.Workers)
	overrideBool(cmd, "verify", &cfg.Batch.Verify)
	overrideString(cmd, "format", &cfg.Batch.ReportFormat)
}

func (a *app) runGenerate(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	applyGenerateFlags(cmd, cfg)
	if err := validate(cfg); err != nil {
		return err
	}

	bc, err := cfg.ToBatchConfig()
	if err != nil {
		return err
	}
	bc.Logger = a.log
	bc.ShowProgress, _ = cmd.Flags().GetBool("progress")
	bc.ProgressInterval, _ = cmd.Flags().GetDuration("progress-interval")
	bc.ProgressWriter = cmd.ErrOrStderr()
	bc.Quiet, _ = cmd.Flags().GetBool("quiet")
	showStats, _ := cmd.Flags().GetBool("stats")
	reportFile, _ := cmd.Flags().GetString("report")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := batch.ProcessBatch(ctx, bc)
	if result != nil {
		if !bc.Quiet || reportFile != "" {
			if serr := result.SaveResults(cmd.OutOrStdout(), cfg.Batch.ReportFormat, reportFile, bc.Quiet); serr != nil {
				return fmt.Errorf("failed to save results: %w", serr)
			}
		}
		if showStats {
			result.PrintStats(cmd.OutOrStdout(), bc.Quiet)
		}
		if failed := len(result.Failed()); failed > 0 {
			a.log.Warn("some URLs could not be generated", "failed", failed, "total", len(result.Items))
		}
	}
	if err != nil {
		return fmt.Errorf("batch processing failed: %w", err)
	}
	return nil
}
