package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of [Default] and
// validates the result. Unknown keys are rejected. An empty document yields
// the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr is required"))
	}

	// Extractor
	if err := cfg.Extractor.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("extractor: %w", err))
	}

	// Ingest
	if cfg.Ingest.MaxFileBytes <= 0 {
		errs = append(errs, fmt.Errorf("ingest.max_file_bytes must be positive, got %d", cfg.Ingest.MaxFileBytes))
	}
	if cfg.Ingest.Workers <= 0 {
		errs = append(errs, fmt.Errorf("ingest.workers must be positive, got %d", cfg.Ingest.Workers))
	}

	// Launch
	if u, err := url.Parse(cfg.Launch.TargetURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("launch.target_url %q must be an absolute URL", cfg.Launch.TargetURL))
	}

	// Collection
	if d := cfg.Collection.DedupeThreshold; d < 0 || d > 1 {
		errs = append(errs, fmt.Errorf("collection.dedupe_threshold %.2f is out of range [0, 1]", d))
	}

	return errors.Join(errs...)
}
