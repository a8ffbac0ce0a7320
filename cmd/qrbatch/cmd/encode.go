package cmd

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/qrbatch/internal/barcode"
	"github.com/MeKo-Tech/qrbatch/internal/raster"
)

func newEncodeCmd(a *app) *cobra.Command {
	encodeCmd := &cobra.Command{
		Use:   "encode <payload>",
		Short: "Encode a single payload as a QR code PNG",
		Long: `Encode one payload and write the PNG to a file, or to stdout when the
output is "-" or omitted.

Examples:
  qrbatch encode https://example.com/abcd -o abcd.png
  qrbatch encode "hello world" --size 270 -e h > hello.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEncode(cmd, args[0])
		},
	}

	f := encodeCmd.Flags()
	f.StringP("output", "o", "-", `output file ("-" for stdout)`)
	f.Int("size", 0, "image size in pixels (default: largest configured size)")
	f.Int("border", 4, "quiet zone width in modules")
	f.StringP("error-level", "e", "m", "error correction level: l, m, q, h")
	f.String("engine", barcode.EngineNative, "symbol encoder: "+strings.Join(barcode.EngineNames(), ", "))
	f.Bool("verify", false, "decode the image before writing it")

	return encodeCmd
}

func (a *app) runEncode(cmd *cobra.Command, payload string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	overrideString(cmd, "error-level", &cfg.QR.ErrorLevel)
	overrideInt(cmd, "border", &cfg.QR.Border)
	overrideString(cmd, "engine", &cfg.QR.Engine)
	if cmd.Flags().Changed("size") {
		size, _ := cmd.Flags().GetInt("size")
		cfg.QR.Sizes = []int{size}
	}
	if err := validate(cfg); err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	engine, err := barcode.NewEngine(cfg.QR.Engine)
	if err != nil {
		return err
	}
	size := slices.Max(cfg.QR.Sizes)

	sym, err := engine.Encode(payload, level)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	img, err := raster.Rasterize(sym, cfg.QR.Border, size)
	if err != nil {
		return err
	}
	if img.ModulePixels() < 1 {
		a.log.Warn("image is smaller than one pixel per module and may not scan",
			"size", size, "modules", img.Modules)
	}

	if verify, _ := cmd.Flags().GetBool("verify"); verify {
		if err := barcode.Verify(cmd.Context(), barcode.NewDecoder(), img, payload); err != nil {
			return err
		}
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" || output == "-" {
		var buf bytes.Buffer
		if err := raster.EncodePNG(&buf, img); err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := raster.SavePNG(output, img); err != nil {
		return err
	}
	a.log.Info("generated QR code", "payload", payload, "version", sym.Version(),
		"level", level.String(), "size", size, "file", output)
	return nil
}
