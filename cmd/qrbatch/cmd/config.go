package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/qrbatch/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create configuration files",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Long: `Print the configuration after applying defaults, the config file and
QRBATCH_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			var out []byte
			switch format {
			case "json":
				out, err = json.MarshalIndent(cfg, "", "  ")
				out = append(out, '\n')
			case "yaml", "":
				out, err = yaml.Marshal(cfg)
			default:
				return fmt.Errorf("unsupported format %q (must be one of: yaml, json)", format)
			}
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}
			if verr := cfg.Validate(); verr != nil {
				a.log.Warn("configuration is not valid", "error", verr)
			}
			if info, _ := cmd.Flags().GetBool("info"); info {
				a.loader.PrintConfigInfo(cmd.ErrOrStderr())
			}
			return nil
		},
	}
	showCmd.Flags().StringP("format", "f", "yaml", "output format: yaml, json")
	showCmd.Flags().Bool("info", false, "also print the config file used and the search paths")

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write a configuration file with the default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := config.DefaultConfigFile
			if len(args) == 1 {
				filename = args[0]
			}
			if err := config.GenerateDefaultConfigFile(filename); err != nil {
				var exists viper.ConfigFileAlreadyExistsError
				if errors.As(err, &exists) {
					return fmt.Errorf("config file %s already exists", filename)
				}
				return fmt.Errorf("failed to write config file: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", filename)
			return nil
		},
	}

	configCmd.AddCommand(showCmd, initCmd)
	return configCmd
}
