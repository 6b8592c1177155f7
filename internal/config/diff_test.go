package config_test

import (
	"testing"

	"github.com/MrWong99/scenedeck/internal/config"
)

func TestDiff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(c *config.Config)
		want   config.ConfigDiff
	}{
		{
			name:   "no changes",
			mutate: func(*config.Config) {},
			want:   config.ConfigDiff{},
		},
		{
			name:   "log level",
			mutate: func(c *config.Config) { c.Server.LogLevel = config.LogDebug },
			want:   config.ConfigDiff{LogLevelChanged: true, NewLogLevel: config.LogDebug},
		},
		{
			name:   "threshold",
			mutate: func(c *config.Config) { c.Extractor.LabelMaxLength = 30 },
			want:   config.ConfigDiff{ExtractorChanged: true},
		},
		{
			name:   "suffix",
			mutate: func(c *config.Config) { c.Launch.Suffix = "film grain" },
			want:   config.ConfigDiff{LaunchChanged: true},
		},
		{
			name:   "target url",
			mutate: func(c *config.Config) { c.Launch.TargetURL = "https://example.com/gen" },
			want:   config.ConfigDiff{LaunchChanged: true},
		},
		{
			name:   "dedupe",
			mutate: func(c *config.Config) { c.Collection.DedupeThreshold = 0.9 },
			want:   config.ConfigDiff{DedupeChanged: true},
		},
		{
			name:   "restart-only fields are ignored",
			mutate: func(c *config.Config) { c.Server.ListenAddr = ":1"; c.Ingest.Workers = 9 },
			want:   config.ConfigDiff{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			old := config.Default()
			new := config.Default()
			tc.mutate(new)

			got := config.Diff(old, new)
			if got != tc.want {
				t.Errorf("Diff() = %+v, want %+v", got, tc.want)
			}
			if got.Any() != (tc.want != config.ConfigDiff{}) {
				t.Errorf("Any() = %v for %+v", got.Any(), got)
			}
		})
	}
}
