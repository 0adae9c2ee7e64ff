package markdown

import "bytes"

// splitFrontmatter locates a YAML block delimited by "---" lines at the very
// start of data. It returns the block and the offset at which the Markdown
// body starts. Without a complete block, yaml is nil and bodyStart is 0.
func splitFrontmatter(data []byte) (yaml []byte, bodyStart int) {
	open := lineEnd(data, 0)
	if !bytes.Equal(bytes.TrimRight(data[:open], "\r\n"), []byte("---")) {
		return nil, 0
	}

	for pos := open; pos < len(data); {
		end := lineEnd(data, pos)
		line := bytes.TrimRight(data[pos:end], "\r\n")
		if bytes.Equal(line, []byte("---")) || bytes.Equal(line, []byte("...")) {
			return data[open:pos], end
		}
		pos = end
	}
	return nil, 0
}

// lineEnd returns the offset just past the newline ending the line at pos.
func lineEnd(data []byte, pos int) int {
	if i := bytes.IndexByte(data[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(data)
}
