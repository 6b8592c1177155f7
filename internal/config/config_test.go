package config_test

import (
	"log/slog"
	"testing"

	"github.com/MrWong99/scenedeck/internal/config"
	"github.com/MrWong99/scenedeck/pkg/scene"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
	if cfg.Extractor != scene.DefaultThresholds() {
		t.Errorf("Default().Extractor = %+v, want scene defaults", cfg.Extractor)
	}
	if cfg.Ingest.MaxFileBytes != 5*1024*1024 {
		t.Errorf("Default().Ingest.MaxFileBytes = %d, want 5 MiB", cfg.Ingest.MaxFileBytes)
	}
	if cfg.Collection.DedupeThreshold != 0 {
		t.Errorf("Default().Collection.DedupeThreshold = %v, want 0 (disabled)", cfg.Collection.DedupeThreshold)
	}
}

func TestLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level     config.LogLevel
		wantValid bool
		wantSlog  slog.Level
	}{
		{config.LogDebug, true, slog.LevelDebug},
		{config.LogInfo, true, slog.LevelInfo},
		{config.LogWarn, true, slog.LevelWarn},
		{config.LogError, true, slog.LevelError},
		{"verbose", false, slog.LevelInfo},
		{"", false, slog.LevelInfo},
	}

	for _, tc := range tests {
		t.Run(string(tc.level), func(t *testing.T) {
			t.Parallel()
			if got := tc.level.IsValid(); got != tc.wantValid {
				t.Errorf("LogLevel(%q).IsValid() = %v, want %v", tc.level, got, tc.wantValid)
			}
			if got := tc.level.SlogLevel(); got != tc.wantSlog {
				t.Errorf("LogLevel(%q).SlogLevel() = %v, want %v", tc.level, got, tc.wantSlog)
			}
		})
	}
}
