// Package today scaffolds the daily worklog file.
package today

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gosimple/slug"

	"github.com/starford/taskparser/internal/apperr"
	"github.com/starford/taskparser/internal/storage"
)

// DateLayout is the date format used in daily file names and headings.
const DateLayout = "2006-01-02"

// File is a rendered daily file.
type File struct {
	Name    string
	Content []byte
}

// Render builds the daily file for date: empty front-matter, a dated title
// heading and empty worklog and notes sections.
func Render(date time.Time, title string) File {
	day := date.Format(DateLayout)
	title = strings.TrimSpace(title)

	name := day + ".md"
	if s := slug.Make(title); s != "" {
		name = day + "-" + s + ".md"
	}

	content := strings.Join([]string{
		"---",
		"---",
		"",
		"# " + day + " | " + title,
		"",
		"## Worklogs",
		"",
		"## Notes",
		"",
	}, "\n")
	return File{Name: name, Content: []byte(content)}
}

// Create writes the daily file into dir and returns its vault path. An
// existing file is never overwritten.
func Create(store storage.Provider, dir string, date time.Time, title string) (string, error) {
	if err := validation.Validate(strings.TrimSpace(title), validation.Required); err != nil {
		return "", fmt.Errorf("today: title: %w", err)
	}
	f := Render(date, title)
	p := path.Join(dir, f.Name)
	if err := store.Create(p, f.Content); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return p, fmt.Errorf("today: %s: %w", p, apperr.ErrAlreadyExists)
		}
		return "", fmt.Errorf("today: write %s: %w", p, err)
	}
	return p, nil
}
