package scene

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Option configures an [Extractor].
type Option func(*Extractor)

// WithThresholds replaces the default [Thresholds]. Invalid thresholds are
// ignored and the defaults are kept; validate them with [Thresholds.Validate]
// first when they come from user input.
func WithThresholds(t Thresholds) Option {
	return func(e *Extractor) {
		if t.Validate() == nil {
			e.thresholds = t
		}
	}
}

// WithIDGenerator sets the function used to assign [Record.ID]. The default
// generates random UUIDs. The function must be safe for concurrent use.
func WithIDGenerator(gen func() string) Option {
	return func(e *Extractor) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithLogger sets the logger used for debug output. Default: [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// Extractor turns assistant output into scene records. It is immutable after
// construction and safe for concurrent use.
type Extractor struct {
	thresholds Thresholds
	newID      func() string
	logger     *slog.Logger
}

// NewExtractor returns an [Extractor] configured with opts.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		thresholds: DefaultThresholds(),
		newID:      uuid.NewString,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Thresholds returns the thresholds in use.
func (e *Extractor) Thresholds() Thresholds {
	return e.thresholds
}

var defaultExtractor = sync.OnceValue(func() *Extractor { return NewExtractor() })

// Extract runs the default extractor over text. See [Extractor.Extract].
func Extract(text, source string) []Record {
	return defaultExtractor().Extract(text, source)
}

// Extract returns the scenes found in text, labelled with source. The result
// is never nil; no scenes yields an empty slice.
func (e *Extractor) Extract(text, source string) []Record {
	return e.ExtractResult(text, source).Records
}

// ExtractResult is like [Extractor.Extract] but also reports which strategy
// produced the records.
//
// JSON takes absolute priority: when any valid JSON scene is found the
// heuristic stages never run. There is no fallback from one strategy to the
// other after that decision.
func (e *Extractor) ExtractResult(text, source string) Result {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	if recs := e.scanJSON(text, source); len(recs) > 0 {
		e.log().Debug("scene: extracted from json", "source", source, "records", len(recs))
		return Result{Records: recs, Strategy: StrategyJSON}
	}

	chunks := e.cleanChunks(e.segment(text))
	chunks = e.merge(chunks)
	if len(chunks) == 0 {
		e.log().Debug("scene: nothing extracted", "source", source)
		return Result{Records: []Record{}, Strategy: StrategyNone}
	}

	recs := make([]Record, 0, len(chunks))
	for i, c := range chunks {
		number := c.number
		if !c.explicit {
			number = strconv.Itoa(i + 1)
		}
		recs = append(recs, Record{
			ID:          e.newID(),
			SceneNumber: number,
			Description: c.text,
			ShortLabel:  c.label,
			Source:      source,
		})
	}
	e.log().Debug("scene: extracted heuristically", "source", source, "records", len(recs))
	return Result{Records: recs, Strategy: StrategyHeuristic}
}

func (e *Extractor) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return slog.Default()
}
