package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/starford/taskparser/internal/tags"
	"github.com/starford/taskparser/internal/wcwidth"
)

const (
	columnSeparator = " | "
	headerRule      = "-"
	checkedGlyph    = "✔"
)

// cellFunc renders one cell at the given column width.
type cellFunc func(value string, width int) string

type column struct {
	tag          string
	width        int
	measure      bool
	renderValue  cellFunc
	renderHeader cellFunc
}

func pad(value string, width int) string {
	return wcwidth.PadRight(value, width)
}

func ellipsize(value string, width int) string {
	return wcwidth.PadRight(wcwidth.Truncate(value, width), width)
}

// shorten drops vowels from word when it is wider than width, then cuts it.
func shorten(word string, width int) string {
	if wcwidth.Width(word) > width {
		word = strings.Map(func(r rune) rune {
			if strings.ContainsRune("aeiou", r) {
				return -1
			}
			return r
		}, word)
		word = wcwidth.Clip(word, width)
	}
	return pad(word, width)
}

func newColumn(tag string) *column {
	c := &column{
		tag:          tag,
		width:        wcwidth.Width(tag),
		measure:      true,
		renderValue:  pad,
		renderHeader: pad,
	}
	switch tag {
	case tags.Hours:
		c.width = 1
		c.renderHeader = shorten
	case tags.Checked:
		c.width = 1
		c.measure = false
		c.renderValue = func(v string, width int) string {
			if v == "true" {
				return pad(checkedGlyph, width)
			}
			return pad("", width)
		}
		c.renderHeader = func(v string, width int) string {
			return pad(wcwidth.Clip(v, 1), width)
		}
	}
	return c
}

var flatten = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Table writes rows as fixed-width columns with a header and a rule line.
// When the line would reach opts.Columns, only the text column shrinks and
// its values are truncated with an ellipsis. Every line is then clipped to
// opts.Columns.
func Table(w io.Writer, rows []tags.Map, show []string, opts Options) error {
	cols := make([]*column, len(show))
	values := make([][]string, len(rows))
	for i, row := range rows {
		values[i] = make([]string, len(show))
		for j, tag := range show {
			values[i][j] = flatten.Replace(row[tag])
		}
	}

	for j, tag := range show {
		c := newColumn(tag)
		if c.measure {
			for i := range rows {
				c.width = max(c.width, wcwidth.Width(values[i][j]))
			}
		}
		cols[j] = c
	}

	if opts.Columns > 0 {
		for _, c := range cols {
			if c.tag != tags.Text {
				continue
			}
			lineWidth := len(columnSeparator) * (len(cols) - 1)
			for _, o := range cols {
				lineWidth += o.width
			}
			if lineWidth >= opts.Columns {
				c.width = max(wcwidth.Width(c.tag), c.width-(lineWidth-opts.Columns))
				c.renderValue = ellipsize
			}
		}
	}

	bw := bufio.NewWriter(w)
	line := func(cell func(j int, c *column) string) {
		var b strings.Builder
		for j, c := range cols {
			if j > 0 {
				b.WriteString(columnSeparator)
			}
			b.WriteString(cell(j, c))
		}
		s := b.String()
		if opts.Columns > 0 {
			s = wcwidth.Clip(s, opts.Columns)
		}
		bw.WriteString(s)
		bw.WriteByte('\n')
	}

	line(func(_ int, c *column) string {
		return c.renderHeader(c.tag, c.width)
	})
	line(func(_ int, c *column) string {
		return c.renderHeader(strings.Repeat(headerRule, wcwidth.Width(c.tag)), c.width)
	})
	for i := range rows {
		line(func(j int, c *column) string {
			return c.renderValue(values[i][j], c.width)
		})
	}
	return bw.Flush()
}
