package scene

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// chunk is a heuristic segment after cleanup.
type chunk struct {
	text     string
	label    string
	number   string
	explicit bool // number came from a header marker
	title    bool // short title-like text that should merge into the next chunk
}

var (
	// fillerPattern recognises the introductory phrases assistants put in
	// front of the actual content. Leading quotes or markup are tolerated.
	fillerPattern = regexp.MustCompile(`(?i)^\W*(?:got it|here are|here is|here['’]s|below are|below is|sure|certainly|of course|absolutely|okay|i['’]ve written|i have written|i['’]ve created|i have created|the following)\b`)

	// headerPattern matches one header prefix: the marker keyword or heading,
	// its number, and the punctuation and markup that follow it.
	headerPattern = regexp.MustCompile(`(?i)^[\s\-*_>•]*(?:\[\s*)?(?:(?:scene|prompt)\s*#?\s*(\d+)|#{1,6}\s*(?:(?:scene|prompt)\s*#?\s*)?(\d+))\s*\]?[\s*_]*[:.)\-–—]*[\s*_]*`)

	// titlePrefixPattern matches a short "Title — " lead-in. The title part
	// carries no sentence punctuation.
	titlePrefixPattern = regexp.MustCompile(`^([^\n.!?]+?)\s+(?:—|–|--)\s+`)
)

// cleanChunks applies filler removal, prefix stripping, numbering and the
// length checks to raw chunks, in order.
func (e *Extractor) cleanChunks(raw []string) []chunk {
	th := e.thresholds
	out := make([]chunk, 0, len(raw))
	for i, r := range raw {
		last := i == len(raw)-1
		text := strings.TrimSpace(r)
		if text == "" {
			continue
		}
		if runeLen(text) < th.MinContentLength && (last || runeLen(text) < th.MinTitleLength) {
			continue
		}

		// Filler only ever precedes the first real scene.
		if len(out) == 0 {
			if text = e.stripFiller(text); text == "" {
				continue
			}
		}

		cleaned, number := e.stripPrefixes(text)

		title := !last && e.titleLike(cleaned)
		if runeLen(cleaned) < th.MinContentLength && !title {
			continue
		}

		out = append(out, chunk{
			text:     cleaned,
			label:    truncateLabel(cleaned, th.LabelMaxLength),
			number:   number,
			explicit: number != "",
			title:    title,
		})
	}
	return out
}

// stripFiller drops leading filler paragraphs and returns what remains.
func (e *Extractor) stripFiller(text string) string {
	paras := blankLines.Split(text, -1)
	n := 0
	for n < len(paras) && e.isFiller(paras[n]) {
		n++
	}
	if n == 0 {
		return text
	}
	return strings.TrimSpace(strings.Join(paras[n:], "\n\n"))
}

// isFiller reports whether para opens with an introductory phrase and stays
// under both filler ceilings.
func (e *Extractor) isFiller(para string) bool {
	para = strings.TrimSpace(para)
	if !fillerPattern.MatchString(para) {
		return false
	}
	return len(strings.Fields(para)) <= e.thresholds.FillerMaxWords &&
		runeLen(para) <= e.thresholds.FillerMaxLength
}

// StripHeader removes every leading header prefix ("Scene 3:", "**Prompt 2**
// -", "### 4.", "[Scene 1]") from text and returns the remainder together with
// the number of the first header, or "" when text had none. Stripping repeats
// until no header prefix remains, so applying it to its own output is a no-op.
func StripHeader(text string) (string, string) {
	number := ""
	for {
		m := headerPattern.FindStringSubmatchIndex(text)
		if m == nil || m[1] == 0 {
			break
		}
		if number == "" {
			switch {
			case m[2] >= 0:
				number = text[m[2]:m[3]]
			case m[4] >= 0:
				number = text[m[4]:m[5]]
			}
		}
		text = text[m[1]:]
	}
	return strings.TrimSpace(text), number
}

// stripPrefixes alternates header and title-prefix stripping until neither
// applies, so the result never starts with a header again. The number comes
// from the first header found.
func (e *Extractor) stripPrefixes(text string) (string, string) {
	text, number := StripHeader(text)
	for {
		next := e.stripTitlePrefix(text)
		if next == text {
			return text, number
		}
		var n string
		text, n = StripHeader(next)
		if number == "" {
			number = n
		}
	}
}

// stripTitlePrefix removes a short "Title — " lead-in, keeping the rest.
func (e *Extractor) stripTitlePrefix(text string) string {
	m := titlePrefixPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return text
	}
	if runeLen(text[m[2]:m[3]]) > e.thresholds.TitlePrefixMaxLength {
		return text
	}
	rest := strings.TrimSpace(text[m[1]:])
	if rest == "" {
		return text
	}
	return rest
}

// titleLike reports whether text reads as a heading rather than a prompt:
// short, single-line and without closing sentence punctuation.
func (e *Extractor) titleLike(text string) bool {
	n := runeLen(text)
	if n < e.thresholds.MinTitleLength || n >= e.thresholds.TitleMaxLength {
		return false
	}
	if strings.ContainsRune(text, '\n') {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text)
	switch r {
	case '.', '!', '?', '…':
		return false
	}
	return true
}

// truncateLabel collapses whitespace and cuts s to max runes plus an ellipsis.
func truncateLabel(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "…"
}

func runeLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
