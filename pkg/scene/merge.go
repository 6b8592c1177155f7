package scene

import "slices"

// merge folds every title-like chunk into the chunk that follows it.
//
// The follower's description becomes "[<title>] <description>" and its label
// becomes the title. A title's scene number replaces the follower's only when
// it came from a header marker. Title chunks never appear on their own unless
// nothing follows them; a trailing title below the minimum content length is
// dropped. The result is never longer than the input, and never empty when
// the input was not.
func (e *Extractor) merge(chunks []chunk) []chunk {
	if len(chunks) == 0 {
		return chunks
	}
	work := slices.Clone(chunks)
	out := make([]chunk, 0, len(work))
	for i := 0; i < len(work); i++ {
		c := work[i]
		if c.title && i < len(work)-1 {
			next := &work[i+1]
			next.text = "[" + c.text + "] " + next.text
			next.label = truncateLabel(c.text, e.thresholds.LabelMaxLength)
			if c.explicit {
				next.number = c.number
				next.explicit = true
			}
			continue
		}
		out = append(out, c)
	}

	if n := len(out); n > 0 && out[n-1].title && runeLen(out[n-1].text) < e.thresholds.MinContentLength {
		out = out[:n-1]
	}
	if len(out) == 0 {
		return chunks
	}
	return out
}
