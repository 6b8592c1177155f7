// Package scene extracts an ordered list of scene prompts from text produced
// by an AI assistant.
//
// Assistant output mixes JSON fragments, headered prose ("Scene 3:", "### 2.")
// and conversational filler ("Sure! Here are your prompts:"). The [Extractor]
// turns such text into [Record] values using a fixed pipeline:
//
//  1. JSON scan: any JSON object or array carrying a "description" field is
//     parsed. When at least one valid JSON scene is found the remaining stages
//     are skipped entirely.
//  2. Segmentation: the text is split in front of header markers, falling
//     back to blank-line boundaries when no marker is present.
//  3. Cleanup: leading filler is dropped, header and title prefixes are
//     stripped, and chunks below the minimum length are discarded.
//  4. Merge: short title-like chunks are folded into the chunk that follows.
//
// Extraction is purely lexical. It performs no I/O, holds no state between
// calls and never returns an error: malformed input yields a best-effort
// partial result or an empty one.
//
// All exported functions and methods are safe for concurrent use.
package scene

// PastedSource is the source label used for text that was pasted rather than
// read from a file.
const PastedSource = "Pasted Content"

// Record is a single extracted scene.
type Record struct {
	// ID is an opaque identifier generated at creation. It is never reused.
	ID string `json:"id" yaml:"id"`

	// SceneNumber is derived from a matched marker, a JSON "scene_number"
	// field, or a sequential fallback. It is not guaranteed to be numeric nor
	// unique across sources.
	SceneNumber string `json:"scene_number" yaml:"scene_number"`

	// Description is the cleaned prompt body. Always non-empty.
	Description string `json:"description" yaml:"description"`

	// ShortLabel is a display-only summary with no invariant tying it to
	// Description.
	ShortLabel string `json:"short_label" yaml:"short_label"`

	// Source names the file the record came from, or [PastedSource].
	Source string `json:"source" yaml:"source"`
}

// Strategy identifies which terminal branch of the pipeline produced a
// [Result].
type Strategy string

const (
	// StrategyNone means no scene could be extracted.
	StrategyNone Strategy = "none"

	// StrategyJSON means the records were parsed from JSON fragments.
	StrategyJSON Strategy = "json"

	// StrategyHeuristic means the records came from header or blank-line
	// segmentation.
	StrategyHeuristic Strategy = "heuristic"
)

// Result is the output of [Extractor.ExtractResult].
type Result struct {
	// Records holds the extracted scenes in input order. Never nil.
	Records []Record

	// Strategy is the branch that produced Records.
	Strategy Strategy
}
