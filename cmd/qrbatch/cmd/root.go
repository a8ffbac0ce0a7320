package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/qrbatch/internal/config"
	"github.com/MeKo-Tech/qrbatch/internal/version"
)

// app carries the state shared by one invocation of the command tree.
type app struct {
	cfgFile string
	loader  *config.Loader
	log     *slog.Logger
}

// NewRootCommand builds the complete command tree. Each call returns an
// independent tree with its own configuration state.
func NewRootCommand() *cobra.Command {
	a := &app{loader: config.NewLoaderWithViper(viper.New())}

	rootCmd := &cobra.Command{
		Use:   "qrbatch",
		Short: "Batch QR code generator",
		Long: `qrbatch turns a list of URLs into QR code images.

Each non-blank line of the input file becomes one QR code, written as PNG
at every configured size (270, 360 and 450 pixels by default). Files are
named after the last four characters of the URL, upper-cased, for example
ABCD_270x270.png.

Examples:
  qrbatch generate
  qrbatch generate -i links.txt -o codes -e h --sizes 512
  qrbatch encode https://example.com/abcd -o abcd.png
  qrbatch serve --port 8080`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.SetVersionTemplate("qrbatch version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "",
		"config file (default is search in ., $XDG_CONFIG_HOME/qrbatch, $HOME, /etc/qrbatch)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	v := a.loader.GetViper()
	_ = v.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(
		newGenerateCmd(a),
		newEncodeCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns a fresh root command for testing purposes.
// This allows tests to execute commands without calling os.Exit().
func GetRootCommand() *cobra.Command {
	return NewRootCommand()
}

// loadConfig resolves defaults, config file and environment, without
// validation so that command flags can still override invalid values.
// It also sets up logging on the command's error stream.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if a.cfgFile != "" {
		cfg, err = a.loader.LoadWithFileWithoutValidation(a.cfgFile)
	} else {
		cfg, err = a.loader.LoadWithoutValidation()
	}
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	a.log = newLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(a.log)
	if used := a.loader.GetConfigFileUsed(); used != "" {
		a.log.Debug("loaded configuration file", "path", used)
	}
	return cfg, nil
}

// validate checks cfg after flag overrides.
func validate(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// newLogger builds the JSON logger for cfg's log level.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	var level slog.Level
	if cfg.Verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func overrideString(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}

func overrideInt(cmd *cobra.Command, name string, dst *int) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetInt(name)
	}
}

func overrideBool(cmd *cobra.Command, name string, dst *bool) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetBool(name)
	}
}

func overrideInts(cmd *cobra.Command, name string, dst *[]int) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetIntSlice(name)
	}
}
