package render

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/starford/taskparser/internal/tags"
)

// CSV writes a header row of tag names followed by one row per tag map.
func CSV(w io.Writer, rows []tags.Map, show []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(show); err != nil {
		return fmt.Errorf("render: csv header: %w", err)
	}
	record := make([]string, len(show))
	for _, row := range rows {
		for j, tag := range show {
			record[j] = row[tag]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("render: csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("render: csv: %w", err)
	}
	return nil
}
