package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MrWong99/scenedeck/internal/config"
)

func TestLoadFromReader_OverlaysDefaults(t *testing.T) {
	t.Parallel()
	yaml := `
extractor:
  min_content_length: 20
launch:
  suffix: "--ar 16:9"
collection:
  dedupe_threshold: 0.92
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Extractor.MinContentLength != 20 {
		t.Errorf("extractor.min_content_length: got %d, want 20", cfg.Extractor.MinContentLength)
	}
	// Untouched keys in a partially specified block keep their defaults.
	if cfg.Extractor.TitleMaxLength != 50 {
		t.Errorf("extractor.title_max_length: got %d, want default 50", cfg.Extractor.TitleMaxLength)
	}
	if cfg.Launch.TargetURL != config.DefaultTargetURL {
		t.Errorf("launch.target_url: got %q, want default", cfg.Launch.TargetURL)
	}
	if cfg.Launch.Suffix != "--ar 16:9" {
		t.Errorf("launch.suffix: got %q", cfg.Launch.Suffix)
	}
	if cfg.Collection.DedupeThreshold != 0.92 {
		t.Errorf("collection.dedupe_threshold: got %v, want 0.92", cfg.Collection.DedupeThreshold)
	}
}

func TestLoadFromReader_EmptyDocument(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddr != config.DefaultListenAddr {
		t.Errorf("server.listen_addr: got %q, want default", cfg.Server.ListenAddr)
	}
}

func TestLoadFromReader_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	_, err := config.LoadFromReader(strings.NewReader("extractor:\n  min_lenght: 3\n"))
	if err == nil {
		t.Fatal("expected error for unknown key, got nil")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr []string
	}{
		{
			name:    "bad log level",
			yaml:    "server:\n  log_level: loud\n",
			wantErr: []string{"server.log_level"},
		},
		{
			name:    "non-positive threshold",
			yaml:    "extractor:\n  min_content_length: 0\n",
			wantErr: []string{"extractor", "min_content_length"},
		},
		{
			name:    "title bounds inverted",
			yaml:    "extractor:\n  min_title_length: 60\n",
			wantErr: []string{"min_title_length"},
		},
		{
			name:    "relative target url",
			yaml:    "launch:\n  target_url: /app\n",
			wantErr: []string{"launch.target_url"},
		},
		{
			name:    "dedupe out of range",
			yaml:    "collection:\n  dedupe_threshold: 1.5\n",
			wantErr: []string{"collection.dedupe_threshold"},
		},
		{
			name:    "all failures are joined",
			yaml:    "ingest:\n  max_file_bytes: -1\n  workers: 0\n",
			wantErr: []string{"ingest.max_file_bytes", "ingest.workers"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tc.yaml))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			for _, want := range tc.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error should mention %q, got: %v", want, err)
				}
			}
		})
	}
}

func TestLoad_FromFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "scenedeck.yaml")
	if err := os.WriteFile(path, []byte("server:\n  listen_addr: \":9000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ListenAddr != ":9000" {
		t.Errorf("server.listen_addr: got %q, want %q", cfg.Server.ListenAddr, ":9000")
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing): expected error, got nil")
	}
}
