package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/lionweb-community/lionweb-dev-tools/internal/validator"
)

// ProjectFile is looked up in the project root.
const ProjectFile = ".lwdt.toml"

//go:embed default.toml
var defaultTOML []byte

type Config struct {
	SerializationFormatVersion string           `toml:"serialization_format_version"`
	Recursive                  bool             `toml:"recursive"`
	Color                      string           `toml:"color"`
	ReportDB                   string           `toml:"report_db"`
	Languages                  []string         `toml:"languages"`
	UnknownFields              string           `toml:"unknown_fields"`
	Diff                       DiffConfig       `toml:"diff"`
	Visualizer                 VisualizerConfig `toml:"visualizer"`
}

type DiffConfig struct {
	Format string `toml:"format"`
}

type VisualizerConfig struct {
	Port int `toml:"port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var c Config
	if err := toml.Unmarshal(defaultTOML, &c); err != nil {
		panic(fmt.Sprintf("failed to parse default embedded config: %v", err))
	}
	return &c
}

// Load decodes the file at path on top of c. Keys missing from the file keep
// their current value.
func (c *Config) Load(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// LoadFull layers the system, user and project files over the defaults.
// Missing files are skipped; a file that exists but does not parse is an
// error. Language paths from the project file are relative to projectRoot.
func LoadFull(projectRoot string) (*Config, error) {
	c := Default()

	paths := []string{"/etc/lwdt/config.toml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "lwdt", "config.toml"))
	}
	for _, path := range paths {
		if err := c.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if projectRoot != "" {
		before := c.Languages
		c.Languages = nil
		err := c.Load(filepath.Join(projectRoot, ProjectFile))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if c.Languages == nil {
			c.Languages = before
		} else {
			for i, l := range c.Languages {
				if !filepath.IsAbs(l) {
					c.Languages[i] = filepath.Join(projectRoot, l)
				}
			}
		}
	}
	return c, c.Validate()
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Color {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("color must be auto, always or never, got %q", c.Color))
	}
	switch c.UnknownFields {
	case "warn", "ignore":
	default:
		errs = append(errs, fmt.Errorf("unknown_fields must be warn or ignore, got %q", c.UnknownFields))
	}
	switch c.Diff.Format {
	case "text", "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("diff format must be text, json or yaml, got %q", c.Diff.Format))
	}
	if c.Visualizer.Port < 0 || c.Visualizer.Port > 65535 {
		errs = append(errs, fmt.Errorf("visualizer port %d out of range", c.Visualizer.Port))
	}
	return errors.Join(errs...)
}

// ValidatorOptions maps the configuration onto validator options.
func (c *Config) ValidatorOptions() validator.Options {
	opts := validator.DefaultOptions()
	opts.Syntax.SerializationFormatVersion = c.SerializationFormatVersion
	opts.Syntax.Recursive = c.Recursive
	opts.Syntax.IgnoreUnknownFields = c.UnknownFields == "ignore"
	return opts
}

// WriteDefault writes the default configuration to path. An existing file is
// left alone.
func WriteDefault(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(defaultTOML)
	return err
}
