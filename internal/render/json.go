package render

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/starford/taskparser/internal/tags"
)

// JSON writes an array with one flat object per tag map. Keys follow the
// order of show and missing tags are written as empty strings.
func JSON(w io.Writer, rows []tags.Map, show []string) error {
	keys := make([][]byte, len(show))
	for j, tag := range show {
		k, err := json.Marshal(tag)
		if err != nil {
			return fmt.Errorf("render: json key: %w", err)
		}
		keys[j] = k
	}

	bw := bufio.NewWriter(w)
	bw.WriteByte('[')
	for i, row := range rows {
		if i > 0 {
			bw.WriteByte(',')
		}
		bw.WriteByte('{')
		for j, tag := range show {
			if j > 0 {
				bw.WriteByte(',')
			}
			v, err := json.Marshal(row[tag])
			if err != nil {
				return fmt.Errorf("render: json value: %w", err)
			}
			bw.Write(keys[j])
			bw.WriteByte(':')
			bw.Write(v)
		}
		bw.WriteByte('}')
	}
	bw.WriteString("]\n")
	return bw.Flush()
}
