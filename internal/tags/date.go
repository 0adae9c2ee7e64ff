package tags

import (
	"path"
	"regexp"
	"strings"
)

var filenameDateRe = regexp.MustCompile(`(?:^|[^\d])(\d{8}|\d{4}-\d{2}-\d{2})(?:$|[^\d])`)

// DateFromFilename returns the first 8-digit or YYYY-MM-DD date found in the
// base name of file, normalized to its 8-digit form.
func DateFromFilename(file string) (string, bool) {
	m := filenameDateRe.FindStringSubmatch(path.Base(file))
	if m == nil {
		return "", false
	}
	return strings.ReplaceAll(m[1], "-", ""), true
}
