// Package config loads command settings from an optional JSON or YAML file.
// Flags given on the command line override file values; see the commands for
// the precedence wiring.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-schemaforge/pkg/export"
	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
	"github.com/goliatone/go-schemaforge/pkg/jsonschema"
)

// ID generator names accepted by IDGenerator.
const (
	IDGeneratorTimestamp = "timestamp"
	IDGeneratorUUID      = "uuid"
)

// Config holds every setting shared by the commands.
type Config struct {
	Addr        string
	Format      string
	Title       string
	ID          string
	Dialect     bool
	Clipboard   bool
	Grace       time.Duration
	IDGenerator string
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Addr:        ":8384",
		Format:      export.FormatJSON,
		Clipboard:   true,
		Grace:       5 * time.Second,
		IDGenerator: IDGeneratorTimestamp,
	}
}

// Duration decodes "5s" style strings from both JSON and YAML.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("duration must be a string like \"5s\": %w", err)
	}
	return d.set(raw)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.set(node.Value)
}

func (d *Duration) set(raw string) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// fileConfig mirrors Config with pointers so absent keys keep defaults.
type fileConfig struct {
	Addr        *string   `json:"addr" yaml:"addr"`
	Format      *string   `json:"format" yaml:"format"`
	Title       *string   `json:"title" yaml:"title"`
	ID          *string   `json:"id" yaml:"id"`
	Dialect     *bool     `json:"dialect" yaml:"dialect"`
	Clipboard   *bool     `json:"clipboard" yaml:"clipboard"`
	Grace       *Duration `json:"grace" yaml:"grace"`
	IDGenerator *string   `json:"idGenerator" yaml:"idGenerator"`
}

// Load reads path over the defaults. An empty path returns Defaults().
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Defaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes data as JSON, falling back to YAML, and applies it over the
// defaults. source is only used in error messages.
func Parse(data []byte, source string) (Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Config{}, fmt.Errorf("config: file %s is empty", source)
	}

	var file fileConfig
	if err := json.Unmarshal(data, &file); err != nil {
		file = fileConfig{}
		if yerr := yaml.Unmarshal(data, &file); yerr != nil {
			return Config{}, fmt.Errorf("config: parse %s: invalid JSON or YAML: %w", source, yerr)
		}
	}

	cfg := Defaults()
	file.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", source, err)
	}
	return cfg, nil
}

func (f fileConfig) apply(cfg *Config) {
	if f.Addr != nil {
		cfg.Addr = strings.TrimSpace(*f.Addr)
	}
	if f.Format != nil {
		cfg.Format = strings.ToLower(strings.TrimSpace(*f.Format))
	}
	if f.Title != nil {
		cfg.Title = *f.Title
	}
	if f.ID != nil {
		cfg.ID = strings.TrimSpace(*f.ID)
	}
	if f.Dialect != nil {
		cfg.Dialect = *f.Dialect
	}
	if f.Clipboard != nil {
		cfg.Clipboard = *f.Clipboard
	}
	if f.Grace != nil {
		cfg.Grace = time.Duration(*f.Grace)
	}
	if f.IDGenerator != nil {
		cfg.IDGenerator = strings.ToLower(strings.TrimSpace(*f.IDGenerator))
	}
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	var errs []error
	switch c.Format {
	case export.FormatJSON, export.FormatYAML, export.FormatOpenAPI:
	default:
		errs = append(errs, fmt.Errorf("unknown format %q", c.Format))
	}
	switch c.IDGenerator {
	case IDGeneratorTimestamp, IDGeneratorUUID:
	default:
		errs = append(errs, fmt.Errorf("unknown idGenerator %q", c.IDGenerator))
	}
	if c.Grace < 0 {
		errs = append(errs, fmt.Errorf("grace must not be negative"))
	}
	return errors.Join(errs...)
}

// IDs returns the configured id generator.
func (c Config) IDs() fieldtree.IDGenerator {
	if c.IDGenerator == IDGeneratorUUID {
		return fieldtree.UUIDs()
	}
	return fieldtree.TimestampIDs()
}

// CompilerOptions translates the envelope settings into compiler options.
func (c Config) CompilerOptions() []jsonschema.Option {
	var opts []jsonschema.Option
	if c.Dialect {
		opts = append(opts, jsonschema.WithDialect())
	}
	if c.ID != "" {
		opts = append(opts, jsonschema.WithID(c.ID))
	}
	if c.Title != "" {
		opts = append(opts, jsonschema.WithTitle(c.Title))
	}
	return opts
}
