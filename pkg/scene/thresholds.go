package scene

import (
	"errors"
	"fmt"
)

// Thresholds groups every tunable length limit used by the pipeline. Lengths
// are measured in runes after trimming surrounding whitespace.
type Thresholds struct {
	// MinJSONDescription is the length a JSON "description" must exceed for
	// the object to count as a scene.
	MinJSONDescription int `yaml:"min_json_description" json:"min_json_description"`

	// MinContentLength is the minimum length of a heuristic chunk, checked on
	// the raw chunk and again on the cleaned text.
	MinContentLength int `yaml:"min_content_length" json:"min_content_length"`

	// TitleMaxLength bounds title-like chunks: shorter chunks without closing
	// sentence punctuation are merged into the chunk that follows.
	TitleMaxLength int `yaml:"title_max_length" json:"title_max_length"`

	// MinTitleLength is the shortest text still treated as a title.
	MinTitleLength int `yaml:"min_title_length" json:"min_title_length"`

	// LabelMaxLength is the truncation length of heuristic short labels.
	LabelMaxLength int `yaml:"label_max_length" json:"label_max_length"`

	// FillerMaxWords is the word ceiling for a leading filler paragraph.
	FillerMaxWords int `yaml:"filler_max_words" json:"filler_max_words"`

	// FillerMaxLength is the rune ceiling for a leading filler paragraph.
	FillerMaxLength int `yaml:"filler_max_length" json:"filler_max_length"`

	// TitlePrefixMaxLength bounds the title part of a "Title — body" prefix.
	TitlePrefixMaxLength int `yaml:"title_prefix_max_length" json:"title_prefix_max_length"`
}

// DefaultThresholds returns the thresholds used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinJSONDescription:   10,
		MinContentLength:     10,
		TitleMaxLength:       50,
		MinTitleLength:       2,
		LabelMaxLength:       40,
		FillerMaxWords:       30,
		FillerMaxLength:      250,
		TitlePrefixMaxLength: 60,
	}
}

// Validate reports every threshold that is out of range.
func (t Thresholds) Validate() error {
	var errs []error
	positive := []struct {
		name  string
		value int
	}{
		{"min_content_length", t.MinContentLength},
		{"title_max_length", t.TitleMaxLength},
		{"min_title_length", t.MinTitleLength},
		{"label_max_length", t.LabelMaxLength},
		{"filler_max_words", t.FillerMaxWords},
		{"filler_max_length", t.FillerMaxLength},
		{"title_prefix_max_length", t.TitlePrefixMaxLength},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", p.name, p.value))
		}
	}
	if t.MinJSONDescription < 0 {
		errs = append(errs, fmt.Errorf("min_json_description must not be negative, got %d", t.MinJSONDescription))
	}
	if t.MinTitleLength > 0 && t.TitleMaxLength > 0 && t.MinTitleLength >= t.TitleMaxLength {
		errs = append(errs, fmt.Errorf("min_title_length (%d) must be below title_max_length (%d)", t.MinTitleLength, t.TitleMaxLength))
	}
	return errors.Join(errs...)
}
