// Package jsonx is the shared schema-with-fallbacks deserializer used at every
// provider response boundary. Model output is free text expected to embed a
// JSON object: Parse tries a strict parse, then the first balanced {...}
// substring, and field readers try the canonical key, then each alias, then a
// default.
package jsonx

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrNoJSON is returned when no JSON object can be recovered from the text.
var ErrNoJSON = errors.New("no JSON object found in response")

// Doc is a parsed JSON value recovered from provider text.
type Doc struct {
	res gjson.Result
}

// Parse recovers a JSON document from text.
func Parse(text string) (Doc, error) {
	trimmed := strings.TrimSpace(stripFences(text))
	if trimmed != "" && gjson.Valid(trimmed) {
		res := gjson.Parse(trimmed)
		if res.IsObject() || res.IsArray() {
			return Doc{res: res}, nil
		}
	}
	if obj, ok := ExtractFirstObject(text); ok {
		return Doc{res: gjson.Parse(obj)}, nil
	}
	return Doc{}, ErrNoJSON
}

// stripFences removes a surrounding markdown code fence.
func stripFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return text
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(t), "```")
}

// ExtractFirstObject returns the first balanced {...} substring of text that
// is valid JSON. Braces inside string literals are ignored.
func ExtractFirstObject(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchBrace(text, start); end > 0 {
			candidate := text[start : end+1]
			if gjson.Valid(candidate) {
				return candidate, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the brace closing the one at start, or -1.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// IsArray reports whether the document root is an array.
func (d Doc) IsArray() bool { return d.res.IsArray() }

// Raw returns the JSON text of the document.
func (d Doc) Raw() string { return d.res.Raw }

// lookup returns the first present, non-null result among key and aliases.
func (d Doc) lookup(key string, aliases ...string) (gjson.Result, bool) {
	for _, k := range append([]string{key}, aliases...) {
		r := d.res.Get(k)
		if r.Exists() && r.Type != gjson.Null {
			return r, true
		}
	}
	return gjson.Result{}, false
}

// String reads a scalar field by canonical key, then aliases. Missing or
// blank values yield "".
func (d Doc) String(key string, aliases ...string) string {
	return d.StringOr("", key, aliases...)
}

// StringOr is String with a sentinel default.
func (d Doc) StringOr(def, key string, aliases ...string) string {
	for _, k := range append([]string{key}, aliases...) {
		r, ok := d.lookup(k)
		if !ok || r.IsObject() || r.IsArray() {
			continue
		}
		if s := strings.TrimSpace(r.String()); s != "" {
			return s
		}
	}
	return def
}

// Array reads an array field by canonical key, then aliases.
func (d Doc) Array(key string, aliases ...string) []Doc {
	r, ok := d.lookup(key, aliases...)
	if !ok || !r.IsArray() {
		return nil
	}
	return wrap(r.Array())
}

// Items returns the elements of a root array document.
func (d Doc) Items() []Doc {
	if !d.res.IsArray() {
		return nil
	}
	return wrap(d.res.Array())
}

// StringMap reads an object field whose values are strings, preserving
// insertion order in the returned keys slice.
func (d Doc) StringMap(key string, aliases ...string) (map[string]string, []string) {
	r, ok := d.lookup(key, aliases...)
	if !ok || !r.IsObject() {
		return nil, nil
	}
	out := map[string]string{}
	var keys []string
	r.ForEach(func(k, v gjson.Result) bool {
		out[k.String()] = v.String()
		keys = append(keys, k.String())
		return true
	})
	return out, keys
}

func wrap(rs []gjson.Result) []Doc {
	out := make([]Doc, 0, len(rs))
	for _, r := range rs {
		out = append(out, Doc{res: r})
	}
	return out
}
