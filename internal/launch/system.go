package launch

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

// SystemClipboard writes to the desktop clipboard.
type SystemClipboard struct{}

// Copy implements [Clipboard].
func (SystemClipboard) Copy(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("launch: no clipboard utility available on %s", runtime.GOOS)
	}
	return clipboardWriteAll(text)
}

// BrowserOpener opens URLs with the platform's default handler.
type BrowserOpener struct{}

// Open implements [Opener]. The browser is started, not waited for, and
// outlives ctx.
func (BrowserOpener) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, args := browserCommand(runtime.GOOS, url)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch: start %s: %w", name, err)
	}
	// Reap the helper once it exits.
	go func() { _ = cmd.Wait() }()
	return nil
}

func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default: // "linux", "freebsd", "openbsd", "netbsd"
		return "xdg-open", []string{url}
	}
}
