// Package config provides the configuration schema, loader, and hot-reload
// watcher for SceneDeck.
package config

import (
	"log/slog"

	"github.com/MrWong99/scenedeck/pkg/scene"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// SlogLevel maps l onto a [slog.Level]. Unknown values map to info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Default values applied by [Default].
const (
	DefaultListenAddr   = "127.0.0.1:8787"
	DefaultMaxFileBytes = 5 << 20
	DefaultWorkers      = 4
	DefaultTargetURL    = "https://gemini.google.com/app"
)

// Config is the root configuration structure for SceneDeck.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Extractor  scene.Thresholds `yaml:"extractor"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Launch     LaunchConfig     `yaml:"launch"`
	Collection CollectionConfig `yaml:"collection"`
}

// ServerConfig holds network and logging settings for the HTTP companion.
type ServerConfig struct {
	// ListenAddr is the TCP address the companion listens on.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// IngestConfig bounds file imports.
type IngestConfig struct {
	// MaxFileBytes is the per-file size ceiling. Larger files are skipped
	// before extraction.
	MaxFileBytes int64 `yaml:"max_file_bytes"`

	// Workers is the number of files read and extracted concurrently.
	Workers int `yaml:"workers"`
}

// LaunchConfig describes the external generation tool.
type LaunchConfig struct {
	// TargetURL is opened after the prompt has been copied.
	TargetURL string `yaml:"target_url"`

	// Suffix is appended to every prompt after a blank line when non-empty.
	Suffix string `yaml:"suffix"`
}

// CollectionConfig tunes the running scene list.
type CollectionConfig struct {
	// DedupeThreshold enables near-duplicate suppression when above zero.
	DedupeThreshold float64 `yaml:"dedupe_threshold"`
}

// Default returns a fully populated configuration. Files are decoded on top
// of it, so any key left out keeps its default.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: DefaultListenAddr,
			LogLevel:   LogInfo,
		},
		Extractor: scene.DefaultThresholds(),
		Ingest: IngestConfig{
			MaxFileBytes: DefaultMaxFileBytes,
			Workers:      DefaultWorkers,
		},
		Launch: LaunchConfig{
			TargetURL: DefaultTargetURL,
		},
	}
}
