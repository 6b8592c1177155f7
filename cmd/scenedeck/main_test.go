package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MrWong99/scenedeck/internal/app"
	"github.com/MrWong99/scenedeck/internal/config"
	"github.com/MrWong99/scenedeck/internal/launch"
	"github.com/MrWong99/scenedeck/internal/launch/mock"
	"github.com/MrWong99/scenedeck/pkg/scene"
)

const story = "Sure! Here are your scenes:\n\n" +
	"Scene 1: A lighthouse on a cliff at dusk, waves crashing below.\n\n" +
	"Scene 2: A quiet forest path under heavy fog at dawn.\n\n" +
	"Scene 3: A neon market in the rain, seen from above."

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, c *cli, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtract_TextFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "story.md", story)

	out, _, err := execute(t, &cli{}, "", "extract", path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	for _, want := range []string{
		"1. [story.md #1]",
		"A lighthouse on a cliff at dusk, waves crashing below.",
		"3. [story.md #3]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Sure!") {
		t.Errorf("filler leaked into output:\n%s", out)
	}
}

func TestExtract_JSONFromStdinAndFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.json", `[{"description": "A red kite over a wheat field at noon.", "scene_number": 4}]`)
	second := writeFile(t, dir, "b.md", "Scene 9: An abandoned train station overgrown with ivy.")

	out, _, err := execute(t, &cli{}, "Prompt 2 - A cat sleeping on a sunlit windowsill.",
		"extract", "--format", "json", first, "-", second)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	var recs []scene.Record
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	type key struct{ Source, Number string }
	var got []key
	for _, r := range recs {
		got = append(got, key{r.Source, r.SceneNumber})
	}
	want := []key{{"a.json", "4"}, {scene.PastedSource, "2"}, {"b.md", "9"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_ReportsSkippedFiles(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.md")

	out, errOut, err := execute(t, &cli{}, "", "extract", missing)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(out, "no scenes found") {
		t.Errorf("stdout = %q, want no scenes found", out)
	}
	if !strings.Contains(errOut, "skipped "+missing) {
		t.Errorf("stderr = %q, want a skipped line for %s", errOut, missing)
	}
}

func TestExtract_InvalidUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no input", args: []string{"extract"}},
		{name: "bad format", args: []string{"extract", "--paste", "--format", "yaml"}},
		{name: "bad log level", args: []string{"--log-level", "loud", "extract", "--paste"}},
		{name: "missing config", args: []string{"--config", "/nonexistent/scenedeck.yaml", "extract", "--paste"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := execute(t, &cli{}, "Scene 1: A lighthouse at dusk above the sea.", tc.args...); err == nil {
				t.Error("want error")
			}
		})
	}
}

func TestLaunch_DryRunUsesConfigSuffix(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "scenedeck.yaml", "launch:\n  suffix: \"cinematic, 35mm\"\n")
	path := writeFile(t, dir, "story.md", story)

	cb := &mock.Clipboard{}
	op := &mock.Opener{}
	c := &cli{appOpts: []app.Option{app.WithClipboard(cb), app.WithOpener(op)}}

	out, _, err := execute(t, c, "", "--config", cfgPath, "launch", path, "--scene", "2", "--dry-run")
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	want := "A quiet forest path under heavy fog at dawn.\n\ncinematic, 35mm\n"
	if out != want {
		t.Errorf("dry run output = %q, want %q", out, want)
	}
	if len(cb.Copied()) != 0 || len(op.Opened()) != 0 {
		t.Error("dry run touched the clipboard or browser")
	}
}

func TestLaunch(t *testing.T) {
	path := writeFile(t, t.TempDir(), "story.md", story)

	tests := []struct {
		name       string
		args       []string
		clipErr    error
		wantCopied string
		wantOpened int
		wantErr    error
		wantAnyErr bool
	}{
		{
			name:       "default is the first scene",
			args:       []string{"launch", path},
			wantCopied: "A lighthouse on a cliff at dusk, waves crashing below.",
			wantOpened: 1,
		},
		{
			name:       "by index",
			args:       []string{"launch", path, "--index", "3"},
			wantCopied: "A neon market in the rain, seen from above.",
			wantOpened: 1,
		},
		{
			name:       "index out of range",
			args:       []string{"launch", path, "--index", "4"},
			wantAnyErr: true,
		},
		{
			name:       "unknown scene number",
			args:       []string{"launch", path, "--scene", "12"},
			wantAnyErr: true,
		},
		{
			name:       "scene and index are exclusive",
			args:       []string{"launch", path, "--scene", "1", "--index", "1"},
			wantAnyErr: true,
		},
		{
			name:    "clipboard failure does not open",
			args:    []string{"launch", path},
			clipErr: errors.New("no display"),
			wantErr: launch.ErrClipboard,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cb := &mock.Clipboard{Err: tc.clipErr}
			op := &mock.Opener{}
			c := &cli{appOpts: []app.Option{app.WithClipboard(cb), app.WithOpener(op)}}

			_, _, err := execute(t, c, "", tc.args...)
			switch {
			case tc.wantErr != nil:
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
			case tc.wantAnyErr:
				if err == nil {
					t.Fatal("want error")
				}
			case err != nil:
				t.Fatalf("launch: %v", err)
			}

			if tc.wantCopied != "" {
				if got := cb.Copied(); len(got) != 1 || got[0] != tc.wantCopied {
					t.Errorf("copied = %q, want [%q]", got, tc.wantCopied)
				}
			}
			if got := len(op.Opened()); got != tc.wantOpened {
				t.Errorf("opened %d URLs, want %d", got, tc.wantOpened)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, &cli{}, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "scenedeck dev\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestPrintStartupSummary(t *testing.T) {
	cfg := config.Default()
	cfg.Launch.Suffix = "a very long suffix that will not fit in the box"

	var buf bytes.Buffer
	printStartupSummary(&buf, cfg, "")
	out := buf.String()

	for _, want := range []string{"(defaults)", config.DefaultListenAddr, "(off)", "5120 KiB", "…"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
