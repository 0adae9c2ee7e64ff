package tags

import (
	"regexp"
	"strings"
)

// inlineRe matches #name and #name(value); the value may not contain ',' or ')'.
var inlineRe = regexp.MustCompile(`#([A-Za-z0-9]+)(?:\(([^),]+)\))?`)

// Extract scans raw for inline annotations, writes them into dst and returns
// raw with the annotations removed and whitespace collapsed to single spaces.
// A bare #name gets the value "true".
func Extract(raw string, dst Map) string {
	matches := inlineRe.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return NormalizeSpace(raw)
	}

	var b strings.Builder
	offset := 0
	for _, m := range matches {
		name := raw[m[2]:m[3]]
		value := "true"
		if m[4] >= 0 {
			value = raw[m[4]:m[5]]
		}
		dst[name] = value

		b.WriteString(raw[offset:m[0]])
		b.WriteByte(' ')
		offset = m[1]
	}
	b.WriteString(raw[offset:])
	return NormalizeSpace(b.String())
}

// NormalizeSpace trims s and collapses every whitespace run, newlines
// included, into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
