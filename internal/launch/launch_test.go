package launch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/MrWong99/scenedeck/internal/launch"
	"github.com/MrWong99/scenedeck/internal/launch/mock"
	"github.com/MrWong99/scenedeck/pkg/scene"
)

const target = "https://example.com/generate"

var rec = scene.Record{
	ID:          "id-1",
	SceneNumber: "3",
	Description: "A lighthouse on a cliff at dusk, waves crashing below.",
	ShortLabel:  "Lighthouse",
	Source:      "scenes.md",
}

func TestComposePrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		desc   string
		suffix string
		want   string
	}{
		{name: "no suffix", desc: "A cat.", suffix: "", want: "A cat."},
		{name: "blank suffix", desc: "A cat.", suffix: " \n\t", want: "A cat."},
		{name: "suffix after blank line", desc: "A cat.", suffix: "16:9, film grain", want: "A cat.\n\n16:9, film grain"},
		{name: "suffix trimmed", desc: "A cat.", suffix: "  watercolor\n", want: "A cat.\n\nwatercolor"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := launch.ComposePrompt(tc.desc, tc.suffix); got != tc.want {
				t.Errorf("ComposePrompt(%q, %q) = %q, want %q", tc.desc, tc.suffix, got, tc.want)
			}
		})
	}
}

func TestLaunch_CopiesThenOpens(t *testing.T) {
	t.Parallel()
	cb := &mock.Clipboard{}
	op := &mock.Opener{}
	l := launch.New(cb, op, launch.WithTargetURL(target), launch.WithSuffix("cinematic"))

	if err := l.Launch(context.Background(), rec); err != nil {
		t.Fatalf("Launch: %v", err)
	}

	copied := cb.Copied()
	if len(copied) != 1 || copied[0] != rec.Description+"\n\ncinematic" {
		t.Errorf("Copied() = %q, want prompt with suffix", copied)
	}
	opened := op.Opened()
	if len(opened) != 1 || opened[0] != target {
		t.Errorf("Opened() = %q, want [%q]", opened, target)
	}
}

func TestLaunch_ClipboardFailureBlocksOpen(t *testing.T) {
	t.Parallel()
	cause := errors.New("xclip: not found")
	cb := &mock.Clipboard{Err: cause}
	op := &mock.Opener{}
	l := launch.New(cb, op, launch.WithTargetURL(target))

	err := l.Launch(context.Background(), rec)
	if !errors.Is(err, launch.ErrClipboard) {
		t.Fatalf("Launch: err = %v, want ErrClipboard", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Launch: err = %v, want it to wrap the cause", err)
	}
	if n := len(op.Opened()); n != 0 {
		t.Errorf("URL opened %d times after clipboard failure, want 0", n)
	}
	if n := cb.Calls(); n != 1 {
		t.Errorf("clipboard called %d times, want exactly 1 (no retry)", n)
	}
}

func TestLaunch_OpenFailure(t *testing.T) {
	t.Parallel()
	cb := &mock.Clipboard{}
	op := &mock.Opener{Err: errors.New("no browser")}
	l := launch.New(cb, op, launch.WithTargetURL(target))

	err := l.Launch(context.Background(), rec)
	if !errors.Is(err, launch.ErrOpen) {
		t.Fatalf("Launch: err = %v, want ErrOpen", err)
	}
	if errors.Is(err, launch.ErrClipboard) {
		t.Error("open failure must not report ErrClipboard")
	}
	if len(cb.Copied()) != 1 {
		t.Error("prompt should still be on the clipboard")
	}
}

func TestLaunch_NoTargetOnlyCopies(t *testing.T) {
	t.Parallel()
	cb := &mock.Clipboard{}
	op := &mock.Opener{}
	l := launch.New(cb, op)

	if err := l.Launch(context.Background(), rec); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if len(op.Opened()) != 0 {
		t.Error("opened a URL without a target configured")
	}
	if got := l.Prompt(rec); got != rec.Description {
		t.Errorf("Prompt() = %q, want bare description", got)
	}
}
