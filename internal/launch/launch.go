// Package launch hands a single scene to the external generation tool.
//
// Launching is a two-step sequence with no rollback: the composed prompt is
// written to the clipboard first, and only when that succeeds is the target
// URL opened. A clipboard failure therefore never opens the tool with a stale
// clipboard. Neither step is retried.
package launch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MrWong99/scenedeck/internal/observe"
	"github.com/MrWong99/scenedeck/pkg/scene"
)

var (
	// ErrClipboard wraps clipboard write failures. The URL was not opened.
	ErrClipboard = errors.New("launch: clipboard write failed")

	// ErrOpen wraps failures to open the target URL. The prompt is already
	// on the clipboard.
	ErrOpen = errors.New("launch: open url failed")
)

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	Copy(text string) error
}

// Opener opens a URL in the user's browser.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// ComposePrompt returns the text sent downstream for a scene: the description,
// followed by a blank line and suffix when suffix has visible content.
func ComposePrompt(description, suffix string) string {
	suffix = strings.TrimSpace(suffix)
	if suffix == "" {
		return description
	}
	return description + "\n\n" + suffix
}

// Option configures a [Launcher].
type Option func(*Launcher)

// WithSuffix sets the global prompt suffix.
func WithSuffix(s string) Option {
	return func(l *Launcher) { l.suffix = s }
}

// WithTargetURL sets the URL opened after a successful copy.
func WithTargetURL(u string) Option {
	return func(l *Launcher) {
		if u != "" {
			l.targetURL = u
		}
	}
}

// WithMetrics sets the metrics sink. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(l *Launcher) {
		if m != nil {
			l.metrics = m
		}
	}
}

// WithLogger sets the logger. Default: [slog.Default].
func WithLogger(lg *slog.Logger) Option {
	return func(l *Launcher) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// Launcher copies prompts and opens the generation tool. It is immutable
// after construction.
type Launcher struct {
	clipboard Clipboard
	opener    Opener
	suffix    string
	targetURL string
	metrics   *observe.Metrics
	logger    *slog.Logger
}

// New returns a [Launcher] that writes through cb and opens with op.
func New(cb Clipboard, op Opener, opts ...Option) *Launcher {
	l := &Launcher{
		clipboard: cb,
		opener:    op,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(l)
	}
	if l.metrics == nil {
		l.metrics = observe.DefaultMetrics()
	}
	return l
}

// Suffix returns the configured global suffix.
func (l *Launcher) Suffix() string { return l.suffix }

// TargetURL returns the URL opened after a successful copy.
func (l *Launcher) TargetURL() string { return l.targetURL }

// Prompt returns the final prompt for rec.
func (l *Launcher) Prompt(rec scene.Record) string {
	return ComposePrompt(rec.Description, l.suffix)
}

// Launch copies the final prompt for rec and then opens the target URL.
// A copy failure returns an error wrapping [ErrClipboard] and nothing is
// opened. An open failure returns an error wrapping [ErrOpen].
func (l *Launcher) Launch(ctx context.Context, rec scene.Record) error {
	ctx, span := observe.StartSpan(ctx, "scene.launch")
	defer span.End()
	log := observe.Logger(ctx, l.logger).With("scene", rec.SceneNumber, "source", rec.Source)

	if err := l.clipboard.Copy(l.Prompt(rec)); err != nil {
		l.metrics.RecordLaunch(ctx, observe.StatusError)
		log.Warn("clipboard write failed; not opening target", "err", err)
		return fmt.Errorf("%w: %w", ErrClipboard, err)
	}

	if l.targetURL == "" {
		l.metrics.RecordLaunch(ctx, observe.StatusOK)
		log.Info("prompt copied; no target url configured")
		return nil
	}

	if err := l.opener.Open(ctx, l.targetURL); err != nil {
		l.metrics.RecordLaunch(ctx, observe.StatusError)
		log.Warn("open target failed", "url", l.targetURL, "err", err)
		return fmt.Errorf("%w: %s: %w", ErrOpen, l.targetURL, err)
	}

	l.metrics.RecordLaunch(ctx, observe.StatusOK)
	log.Info("scene launched", "url", l.targetURL)
	return nil
}
