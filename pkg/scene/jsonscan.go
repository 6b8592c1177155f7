package scene

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// descriptionToken must appear inside a JSON candidate for it to be parsed
// as scenes at all.
const descriptionToken = "description"

// scanJSON finds every JSON object or array in text that carries scenes.
//
// Each '{' or '[' is tried as the start of one JSON value. A value that does
// not decode is skipped one byte at a time so inner values of a broken
// wrapper can still match. A value that decodes but holds no scene is also
// skipped one byte at a time when it mentions the description token, which
// lets wrappers such as {"scenes":[...]} yield their nested array.
func (e *Extractor) scanJSON(text, source string) []Record {
	var recs []Record
	for i := 0; i < len(text); {
		j := strings.IndexAny(text[i:], "{[")
		if j < 0 {
			break
		}
		start := i + j
		end, ok := jsonValueEnd(text[start:])
		if !ok {
			i = start + 1
			continue
		}
		candidate := text[start : start+end]
		if !strings.Contains(candidate, descriptionToken) {
			i = start + end
			continue
		}
		found := e.scenesFromJSON(candidate, source, len(recs))
		if len(found) == 0 {
			i = start + 1
			continue
		}
		recs = append(recs, found...)
		i = start + end
	}
	return recs
}

// jsonValueEnd decodes the single JSON value at the start of s and returns
// the byte offset just past it.
func jsonValueEnd(s string) (int, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return 0, false
	}
	return int(dec.InputOffset()), true
}

// scenesFromJSON converts a decoded object, or each object element of a
// decoded array, into records. offset is the number of JSON scenes found
// earlier in the same input and drives the positional scene number fallback.
func (e *Extractor) scenesFromJSON(raw, source string, offset int) []Record {
	var out []Record
	add := func(obj gjson.Result) {
		desc := obj.Get("description")
		if desc.Type != gjson.String || runeLen(desc.Str) <= e.thresholds.MinJSONDescription {
			return
		}
		number := strconv.Itoa(offset + len(out) + 1)
		if sn := obj.Get("scene_number"); sn.Type == gjson.Number || sn.Type == gjson.String {
			if v := strings.TrimSpace(sn.String()); v != "" {
				number = v
			}
		}
		out = append(out, Record{
			ID:          e.newID(),
			SceneNumber: number,
			Description: desc.Str,
			ShortLabel:  jsonLabel(obj, number),
			Source:      source,
		})
	}

	res := gjson.Parse(raw)
	switch {
	case res.IsArray():
		res.ForEach(func(_, v gjson.Result) bool {
			if v.IsObject() {
				add(v)
			}
			return true
		})
	case res.IsObject():
		add(res)
	}
	return out
}

// jsonLabel picks the first non-empty label field, falling back to
// "Scene <number>".
func jsonLabel(obj gjson.Result, number string) string {
	for _, path := range []string{"visuals.subject", "subject", "title"} {
		v := obj.Get(path)
		if v.Type == gjson.String {
			if s := strings.TrimSpace(v.Str); s != "" {
				return s
			}
		}
	}
	return "Scene " + number
}
