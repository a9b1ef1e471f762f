package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/LegacyCodeHQ/compresolve/pipeline"
	"github.com/LegacyCodeHQ/compresolve/resolver"
	"gopkg.in/yaml.v3"
)

// FileName is looked up in the base directory when no config path is given.
const FileName = ".compresolve.yaml"

// Config is the on-disk configuration. Zero fields fall back to defaults.
type Config struct {
	// Extensions in priority order, without leading dots.
	Extensions []string `yaml:"extensions"`
	// VendorDir is the vendored-dependency folder name.
	VendorDir string `yaml:"vendorDir"`
	// Hook is the pipeline hook the resolver is tapped onto.
	Hook string `yaml:"hook"`
}

func Default() Config {
	return Config{
		Extensions: resolver.DefaultExtensions(),
		VendorDir:  resolver.DefaultVendorDir,
		Hook:       pipeline.HookDirectory,
	}
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDir loads FileName from dir.
func LoadDir(dir string) (Config, error) {
	return Load(filepath.Join(dir, FileName))
}

// Parse decodes YAML from r on top of the defaults and validates the result.
// Unknown keys are rejected.
func Parse(r io.Reader) (Config, error) {
	var file Config
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}

	cfg := Default().Merge(file)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Merge returns c with every non-zero field of override applied.
func (c Config) Merge(override Config) Config {
	if len(override.Extensions) > 0 {
		c.Extensions = append([]string(nil), override.Extensions...)
	}
	if override.VendorDir != "" {
		c.VendorDir = override.VendorDir
	}
	if override.Hook != "" {
		c.Hook = override.Hook
	}
	return c
}

func (c Config) Validate() error {
	if len(c.Extensions) == 0 {
		return fmt.Errorf("%w: extension list is empty", resolver.ErrInvalidExtension)
	}
	for _, ext := range c.Extensions {
		if err := resolver.ValidateExtension(ext); err != nil {
			return err
		}
	}
	if c.Hook == "" {
		return errors.New("hook cannot be empty")
	}
	return nil
}

// ResolverOptions converts c into resolver construction options.
func (c Config) ResolverOptions() []resolver.Option {
	opts := []resolver.Option{resolver.WithExtensions(c.Extensions...)}
	if c.VendorDir != "" {
		opts = append(opts, resolver.WithVendorDir(c.VendorDir))
	}
	return opts
}
