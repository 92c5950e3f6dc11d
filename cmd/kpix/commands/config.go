package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/teranos/kpix/config"
	"github.com/teranos/kpix/errors"
)

// ConfigCmd groups configuration management subcommands
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage kpix configuration",
	Long: `Display and manage kpix configuration.

Configuration sources (in order of precedence):
1. Command line flags and arguments
2. Environment variables (ES_HOST, ES_PORT, ES_INDEX, KPIX_* for the rest)
3. Project config (./kpix.toml, searched up from the working directory)
4. User config (~/.kpix/kpix.toml)
5. Default values

Examples:
  kpix config show                 # Show effective configuration
  kpix config show --format json   # ... as JSON
  kpix config init                 # Write defaults to ./kpix.toml
  kpix config check                # Report unknown keys in the active file`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a configuration file with default values",
	Long: `Write the built-in defaults to path (default ./kpix.toml). An existing file is
kept as path.back1, older backups shift up to .back3.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate a configuration file and report unknown keys",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigCheck,
}

var configFormat string

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configCheckCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# kpix effective configuration\n%s", data)
	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Fprintf(out, "# kpix effective configuration\n%s", data)
	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.ConfigFileName
	if len(args) > 0 {
		path = args[0]
	}

	// defaults only: environment overrides are not persisted
	v := viper.New()
	config.SetDefaults(v)
	cfg, err := config.LoadWithViper(v)
	if err != nil {
		return err
	}
	if err := config.Write(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := config.FindConfigFile()
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return errors.WithHint(
			errors.Mark(errors.New("no configuration file found"), errors.ErrInvalidConfig),
			"run 'kpix config init' to create one")
	}

	unknown, err := config.CheckFile(path)
	if err != nil {
		return err
	}
	if _, err := config.LoadFromFile(path); err != nil {
		return err
	}
	if len(unknown) > 0 {
		return errors.Mark(
			errors.Newf("%s has unknown keys: %s", path, strings.Join(unknown, ", ")),
			errors.ErrInvalidConfig)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid\n", path)
	return nil
}
