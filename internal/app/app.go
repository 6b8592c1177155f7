// Package app wires the SceneDeck subsystems into a running application.
//
// The App owns the extractor, the running scene collection, the ingestor and
// the launcher. Import methods append to the collection in arrival order;
// Launch hands one scene to the external tool. ApplyConfig swaps thresholds,
// the prompt suffix, the target URL and the dedupe threshold without a
// restart; in-flight extractions keep the extractor they started with.
//
// For testing, inject doubles via functional options (WithClipboard,
// WithOpener, WithMetrics, ...). When an option is not provided, New uses the
// system clipboard and browser.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/MrWong99/scenedeck/internal/collection"
	"github.com/MrWong99/scenedeck/internal/config"
	"github.com/MrWong99/scenedeck/internal/ingest"
	"github.com/MrWong99/scenedeck/internal/launch"
	"github.com/MrWong99/scenedeck/internal/observe"
	"github.com/MrWong99/scenedeck/pkg/scene"
)

// ImportResult reports one import call.
type ImportResult struct {
	// Files holds one entry per input, in argument order.
	Files []ingest.FileResult

	// Added holds the records actually appended to the collection. It can be
	// shorter than the extracted records when near-duplicate suppression is on.
	Added []scene.Record
}

// Skipped returns the inputs that were not extracted.
func (r ImportResult) Skipped() []ingest.FileResult {
	return ingest.Batch{Files: r.Files}.Skipped()
}

// App owns all subsystem lifetimes.
type App struct {
	cfg       atomic.Pointer[config.Config]
	extractor atomic.Pointer[scene.Extractor]
	launcher  atomic.Pointer[launch.Launcher]

	ingestor *ingest.Ingestor
	scenes   *collection.Collection

	clipboard launch.Clipboard
	opener    launch.Opener
	idGen     func() string
	metrics   *observe.Metrics
	logger    *slog.Logger
	level     *slog.LevelVar
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithClipboard injects a clipboard instead of the system clipboard.
func WithClipboard(c launch.Clipboard) Option {
	return func(a *App) { a.clipboard = c }
}

// WithOpener injects a URL opener instead of the system browser.
func WithOpener(o launch.Opener) Option {
	return func(a *App) { a.opener = o }
}

// WithIDGenerator overrides record ID generation.
func WithIDGenerator(gen func() string) Option {
	return func(a *App) { a.idGen = gen }
}

// WithMetrics sets the metrics sink. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithLogger sets the logger. Default: [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithLevelVar lets ApplyConfig change the log level of the handler built
// around lv.
func WithLevelVar(lv *slog.LevelVar) Option {
	return func(a *App) { a.level = lv }
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New creates an App from a validated config.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	a := &App{}
	for _, o := range opts {
		o(a)
	}
	if a.clipboard == nil {
		a.clipboard = launch.SystemClipboard{}
	}
	if a.opener == nil {
		a.opener = launch.BrowserOpener{}
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}

	a.cfg.Store(cfg)
	a.extractor.Store(a.newExtractor(cfg))
	a.launcher.Store(a.newLauncher(cfg))

	a.scenes = collection.New(collection.WithDedupeThreshold(cfg.Collection.DedupeThreshold))
	a.ingestor = ingest.New(liveExtractor{a},
		ingest.WithMaxBytes(cfg.Ingest.MaxFileBytes),
		ingest.WithWorkers(cfg.Ingest.Workers),
		ingest.WithMetrics(a.metrics),
		ingest.WithLogger(a.logger),
	)
	return a, nil
}

func (a *App) newExtractor(cfg *config.Config) *scene.Extractor {
	opts := []scene.Option{
		scene.WithThresholds(cfg.Extractor),
		scene.WithLogger(a.logger),
	}
	if a.idGen != nil {
		opts = append(opts, scene.WithIDGenerator(a.idGen))
	}
	return scene.NewExtractor(opts...)
}

func (a *App) newLauncher(cfg *config.Config) *launch.Launcher {
	return launch.New(a.clipboard, a.opener,
		launch.WithSuffix(cfg.Launch.Suffix),
		launch.WithTargetURL(cfg.Launch.TargetURL),
		launch.WithMetrics(a.metrics),
		launch.WithLogger(a.logger),
	)
}

// liveExtractor resolves the current extractor on every call so the ingestor
// picks up reloaded thresholds.
type liveExtractor struct{ a *App }

func (l liveExtractor) ExtractResult(text, source string) scene.Result {
	return l.a.extractor.Load().ExtractResult(text, source)
}

// ─── Imports ─────────────────────────────────────────────────────────────────

// ImportFiles extracts every path and appends the records in argument order.
func (a *App) ImportFiles(ctx context.Context, paths ...string) (ImportResult, error) {
	batch, err := a.ingestor.ImportFiles(ctx, paths...)
	if err != nil {
		return ImportResult{}, err
	}
	return a.commit(ctx, batch.Files...), nil
}

// ImportReader extracts an uploaded document and appends its records.
func (a *App) ImportReader(ctx context.Context, name string, r io.Reader) (ImportResult, error) {
	res, err := a.ingestor.ImportReader(ctx, name, r)
	if err != nil {
		return ImportResult{}, err
	}
	return a.commit(ctx, res), nil
}

// ImportPaste extracts pasted text and appends its records.
func (a *App) ImportPaste(ctx context.Context, text string) (ImportResult, error) {
	res, err := a.ingestor.ImportPaste(ctx, text)
	if err != nil {
		return ImportResult{}, err
	}
	return a.commit(ctx, res), nil
}

func (a *App) commit(ctx context.Context, files ...ingest.FileResult) ImportResult {
	var extracted []scene.Record
	for _, f := range files {
		extracted = append(extracted, f.Records...)
	}
	added := a.scenes.Append(extracted...)
	if len(added) > 0 {
		a.metrics.CollectionSize.Add(ctx, int64(len(added)))
	}
	if dropped := len(extracted) - len(added); dropped > 0 {
		a.logger.Info("near-duplicate scenes skipped", "count", dropped)
	}
	return ImportResult{Files: files, Added: added}
}

// ─── Collection ──────────────────────────────────────────────────────────────

// Scenes returns the collection in arrival order.
func (a *App) Scenes() []scene.Record { return a.scenes.List() }

// Scene returns one record by ID. Returns [collection.ErrNotFound] for
// unknown IDs.
func (a *App) Scene(id string) (scene.Record, error) { return a.scenes.Get(id) }

// Clear empties the collection and returns how many records were removed.
func (a *App) Clear(ctx context.Context) int {
	n := a.scenes.Clear()
	if n > 0 {
		a.metrics.CollectionSize.Add(ctx, -int64(n))
	}
	a.logger.Info("collection cleared", "removed", n)
	return n
}

// Subscribe registers a listener for collection changes.
func (a *App) Subscribe(buffer int) (<-chan collection.Event, func()) {
	return a.scenes.Subscribe(buffer)
}

// ─── Launch ──────────────────────────────────────────────────────────────────

// Prompt returns the final prompt for the scene with the given ID.
func (a *App) Prompt(id string) (string, error) {
	rec, err := a.scenes.Get(id)
	if err != nil {
		return "", err
	}
	return a.launcher.Load().Prompt(rec), nil
}

// Launch copies the scene's prompt and opens the target tool.
func (a *App) Launch(ctx context.Context, id string) error {
	rec, err := a.scenes.Get(id)
	if err != nil {
		return err
	}
	return a.LaunchRecord(ctx, rec)
}

// LaunchRecord launches a record that need not be in the collection.
func (a *App) LaunchRecord(ctx context.Context, rec scene.Record) error {
	return a.launcher.Load().Launch(ctx, rec)
}

// PromptFor composes the final prompt for rec with the current suffix.
func (a *App) PromptFor(rec scene.Record) string {
	return a.launcher.Load().Prompt(rec)
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config returns the configuration currently in effect.
func (a *App) Config() *config.Config { return a.cfg.Load() }

// ApplyConfig applies the hot-reloadable parts of next. It matches the
// callback signature of [config.NewWatcher]. Restart-only fields are stored
// but take effect on the next start.
func (a *App) ApplyConfig(old, next *config.Config) {
	if next == nil {
		return
	}
	if old == nil {
		old = a.cfg.Load()
	}
	d := config.Diff(old, next)
	a.cfg.Store(next)

	if d.LogLevelChanged && a.level != nil {
		a.level.Set(next.Server.LogLevel.SlogLevel())
	}
	if d.ExtractorChanged {
		a.extractor.Store(a.newExtractor(next))
	}
	if d.LaunchChanged {
		a.launcher.Store(a.newLauncher(next))
	}
	if d.DedupeChanged {
		a.scenes.SetDedupeThreshold(next.Collection.DedupeThreshold)
	}
	if d.Any() {
		a.logger.Info("configuration applied",
			"log_level", d.LogLevelChanged,
			"extractor", d.ExtractorChanged,
			"launch", d.LaunchChanged,
			"dedupe", d.DedupeChanged,
		)
	}
}

// Ready reports whether the app can serve requests.
func (a *App) Ready(context.Context) error {
	if a.extractor.Load() == nil || a.launcher.Load() == nil {
		return errors.New("app: not initialised")
	}
	return nil
}
