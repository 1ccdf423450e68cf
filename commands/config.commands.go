package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"pianoroll/rollgenerator"
)

// Config is the YAML configuration file. Layout keys sit at the top level
// next to the run settings.
type Config struct {
	rollgenerator.Layout `yaml:",inline"`

	// OutputDirectory is a local directory or s3://bucket/prefix.
	OutputDirectory string `yaml:"output_directory"`
	Workers         int    `yaml:"workers"`
	// LedgerDir holds the render ledger used by incremental batches. Empty
	// means the user cache directory.
	LedgerDir string `yaml:"ledger_dir"`
	Listen    string `yaml:"listen"`
}

func DefaultConfig() Config {
	return Config{
		Layout:          rollgenerator.DefaultLayout(),
		OutputDirectory: "output",
		Workers:         4,
		Listen:          ":8888",
	}
}

// LoadConfig reads path over the defaults. An empty path returns the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.OutputDirectory == "" {
		return errors.New("output_directory must not be empty")
	}
	return c.Layout.Validate()
}

func (c Config) ledgerDir() (string, error) {
	if c.LedgerDir != "" {
		return c.LedgerDir, nil
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("no ledger_dir configured: %w", err)
	}
	return filepath.Join(cache, "pianoroll", "ledger"), nil
}

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})
	return cmd
}
