package scene

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// markerTimeout caps a single marker scan. Inputs that hit it are treated as
// having no markers.
const markerTimeout = 2 * time.Second

// markerPattern is a zero-width lookahead that matches in front of a header
// marker. Two positions qualify:
//
//   - a line start followed by "Scene 3", "Prompt 3", "[Scene 3]", "### 3."
//     or "## Scene 3", with any leading whitespace, bullets, quotes or
//     emphasis markup;
//   - a position after whitespace or punctuation followed by an inline
//     "Scene 3", "Prompt 3" or "[Scene 3]", optionally wrapped in bold or
//     italic markup. Headings stay anchored to line starts.
//
// The match sits before the optional prefix so the marker text starts the
// new chunk.
var markerPattern = func() *regexp2.Regexp {
	re := regexp2.MustCompile(
		`^(?=[ \t]*(?:[-*_>•]+[ \t]*)*(?:\[[ \t]*)?(?:(?:scene|prompt)[ \t]*#?[ \t]*\d|#{1,6}[ \t]*(?:(?:scene|prompt)[ \t]*#?[ \t]*)?\d))`+
			`|(?<=[\s.!?:;,)\]])(?=[ \t]*(?:[-*_•]+[ \t]*)*(?:\[[ \t]*)?(?:scene|prompt)[ \t]*#?[ \t]*\d+\b)`,
		regexp2.IgnoreCase|regexp2.Multiline,
	)
	re.MatchTimeout = markerTimeout
	return re
}()

// markerLead is what may sit between two matches that belong to the same
// marker, e.g. the space and "**" in front of "**Scene 2**".
const markerLead = " \t\r\n*_-•>["

// blankLines separates paragraphs: one or more blank lines.
var blankLines = regexp.MustCompile(`\n[ \t]*\n\s*`)

// segment splits text into raw chunks in front of every header marker. When
// that leaves a single chunk it falls back to paragraph splitting.
func (e *Extractor) segment(text string) []string {
	chunks, err := splitOnMarkers(text)
	if err != nil {
		e.log().Debug("scene: marker scan aborted", "err", err)
		chunks = nil
	}
	if len(chunks) <= 1 {
		return blankLines.Split(text, -1)
	}
	return chunks
}

// splitOnMarkers cuts text at each marker position. regexp2 reports rune
// offsets; they are mapped back to byte offsets so chunks are slices of the
// original text, invalid UTF-8 included.
func splitOnMarkers(text string) ([]string, error) {
	runes := []rune(text)
	offsets := byteOffsets(text, len(runes))

	var cuts []int
	prev := 0
	m, err := markerPattern.FindRunesMatch(runes)
	for err == nil && m != nil {
		at := offsets[m.Index]
		if at > prev && strings.Trim(text[prev:at], markerLead) != "" {
			cuts = append(cuts, at)
			prev = at
		}
		m, err = markerPattern.FindNextMatch(m)
	}
	if err != nil {
		return nil, err
	}

	chunks := make([]string, 0, len(cuts)+1)
	prev = 0
	for _, c := range cuts {
		chunks = append(chunks, text[prev:c])
		prev = c
	}
	return append(chunks, text[prev:]), nil
}

// byteOffsets returns the byte offset of every rune of text as produced by
// []rune(text), plus len(text). Each invalid byte counts as one rune.
func byteOffsets(text string, n int) []int {
	off := make([]int, 0, n+1)
	for i := 0; i < len(text); {
		off = append(off, i)
		_, w := utf8.DecodeRuneInString(text[i:])
		i += w
	}
	return append(off, len(text))
}
