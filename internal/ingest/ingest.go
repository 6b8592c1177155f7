// Package ingest turns files, uploads and pasted text into scene records.
//
// It carries the responsibilities the extractor leaves to its caller: reading
// input as text, refusing inputs above a size ceiling before they reach the
// extractor, labelling every record with its source, and running a batch of
// files concurrently while keeping results in argument order.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/scenedeck/internal/observe"
	"github.com/MrWong99/scenedeck/pkg/scene"
)

// ErrFileTooLarge is reported for inputs above the configured size ceiling.
var ErrFileTooLarge = errors.New("ingest: file exceeds size limit")

// Default limits.
const (
	DefaultMaxBytes = 5 << 20
	DefaultWorkers  = 4
)

// Skip reasons recorded on the files.skipped counter.
const (
	reasonTooLarge  = "too_large"
	reasonReadError = "read_error"
)

// Extractor is the subset of [scene.Extractor] the ingestor needs.
type Extractor interface {
	ExtractResult(text, source string) scene.Result
}

// FileResult is the outcome of importing one input.
type FileResult struct {
	// Path is the input as given by the caller.
	Path string

	// Source is the label attached to the records (the file's base name).
	Source string

	Records  []scene.Record
	Strategy scene.Strategy

	// Err is set when the input was skipped. The batch continues regardless.
	Err error
}

// Batch holds per-input results in argument order.
type Batch struct {
	Files []FileResult
}

// Records concatenates the records of every input in order.
func (b Batch) Records() []scene.Record {
	var out []scene.Record
	for _, f := range b.Files {
		out = append(out, f.Records...)
	}
	return out
}

// Skipped returns the inputs that produced an error.
func (b Batch) Skipped() []FileResult {
	var out []FileResult
	for _, f := range b.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Option configures an [Ingestor].
type Option func(*Ingestor)

// WithMaxBytes sets the per-input size ceiling.
func WithMaxBytes(n int64) Option {
	return func(i *Ingestor) {
		if n > 0 {
			i.maxBytes = n
		}
	}
}

// WithWorkers sets how many files are processed concurrently.
func WithWorkers(n int) Option {
	return func(i *Ingestor) {
		if n > 0 {
			i.workers = n
		}
	}
}

// WithMetrics sets the metrics sink. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(i *Ingestor) {
		if m != nil {
			i.metrics = m
		}
	}
}

// WithLogger sets the logger. Default: [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(i *Ingestor) {
		if l != nil {
			i.logger = l
		}
	}
}

// Ingestor reads inputs and runs them through an [Extractor].
// It is safe for concurrent use.
type Ingestor struct {
	extractor Extractor
	maxBytes  int64
	workers   int
	metrics   *observe.Metrics
	logger    *slog.Logger
}

// New returns an [Ingestor] that extracts with ex.
func New(ex Extractor, opts ...Option) *Ingestor {
	i := &Ingestor{
		extractor: ex,
		maxBytes:  DefaultMaxBytes,
		workers:   DefaultWorkers,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(i)
	}
	if i.metrics == nil {
		i.metrics = observe.DefaultMetrics()
	}
	return i
}

// MaxBytes returns the per-input size ceiling.
func (i *Ingestor) MaxBytes() int64 { return i.maxBytes }

// ImportFiles reads and extracts every path concurrently. Oversized and
// unreadable files are reported in their [FileResult] and do not stop the
// batch. The only error returned is the context's.
func (i *Ingestor) ImportFiles(ctx context.Context, paths ...string) (Batch, error) {
	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for idx, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[idx] = i.importFile(gctx, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch{}, fmt.Errorf("ingest: import files: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Batch{}, fmt.Errorf("ingest: import files: %w", err)
	}
	return Batch{Files: results}, nil
}

func (i *Ingestor) importFile(ctx context.Context, path string) FileResult {
	res := FileResult{Path: path, Source: filepath.Base(path)}

	info, err := os.Stat(path)
	if err != nil {
		return i.skip(ctx, res, reasonReadError, fmt.Errorf("ingest: stat %q: %w", path, err))
	}
	if info.IsDir() {
		return i.skip(ctx, res, reasonReadError, fmt.Errorf("ingest: %q is a directory", path))
	}
	if info.Size() > i.maxBytes {
		return i.skip(ctx, res, reasonTooLarge, fmt.Errorf("%w: %q is %d bytes, limit %d", ErrFileTooLarge, path, info.Size(), i.maxBytes))
	}

	f, err := os.Open(path)
	if err != nil {
		return i.skip(ctx, res, reasonReadError, fmt.Errorf("ingest: open %q: %w", path, err))
	}
	defer f.Close()

	text, err := i.readLimited(f)
	if err != nil {
		reason := reasonReadError
		if errors.Is(err, ErrFileTooLarge) {
			reason = reasonTooLarge
		}
		return i.skip(ctx, res, reason, fmt.Errorf("ingest: read %q: %w", path, err))
	}

	res.Records, res.Strategy = i.extract(ctx, text, res.Source)
	return res
}

// ImportReader extracts scenes from an upload. The same size ceiling applies;
// the reader is not consumed beyond it.
func (i *Ingestor) ImportReader(ctx context.Context, name string, r io.Reader) (FileResult, error) {
	if err := ctx.Err(); err != nil {
		return FileResult{}, err
	}
	res := FileResult{Path: name, Source: filepath.Base(name)}

	text, err := i.readLimited(r)
	if err != nil {
		reason := reasonReadError
		if errors.Is(err, ErrFileTooLarge) {
			reason = reasonTooLarge
		}
		return i.skip(ctx, res, reason, fmt.Errorf("ingest: read %q: %w", name, err)), nil
	}

	res.Records, res.Strategy = i.extract(ctx, text, res.Source)
	return res, nil
}

// ImportPaste extracts scenes from freeform pasted text, labelled
// [scene.PastedSource].
func (i *Ingestor) ImportPaste(ctx context.Context, text string) (FileResult, error) {
	if err := ctx.Err(); err != nil {
		return FileResult{}, err
	}
	res := FileResult{Path: scene.PastedSource, Source: scene.PastedSource}
	res.Records, res.Strategy = i.extract(ctx, text, res.Source)
	return res, nil
}

// readLimited reads r up to the ceiling and fails with [ErrFileTooLarge] when
// more data follows.
func (i *Ingestor) readLimited(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, i.maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > i.maxBytes {
		return "", fmt.Errorf("%w: limit %d bytes", ErrFileTooLarge, i.maxBytes)
	}
	return string(data), nil
}

func (i *Ingestor) extract(ctx context.Context, text, source string) ([]scene.Record, scene.Strategy) {
	ctx, span := observe.StartSpan(ctx, "scene.extract")
	defer span.End()

	start := time.Now()
	result := i.extractor.ExtractResult(text, source)
	i.metrics.RecordExtraction(ctx, string(result.Strategy), len(result.Records), time.Since(start))

	observe.Logger(ctx, i.logger).Debug("extracted scenes",
		"source", source,
		"strategy", result.Strategy,
		"scenes", len(result.Records),
	)
	return result.Records, result.Strategy
}

func (i *Ingestor) skip(ctx context.Context, res FileResult, reason string, err error) FileResult {
	i.metrics.RecordSkippedFile(ctx, reason)
	i.logger.Warn("skipping input", "source", res.Source, "reason", reason, "err", err)
	res.Err = err
	return res
}
