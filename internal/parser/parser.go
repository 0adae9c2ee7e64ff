// Package parser walks a vault of Markdown files and turns checklist entries
// and worklog entries into tagged items, honoring folder, file, heading and
// inline tag scopes.
package parser

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/starford/taskparser/internal/checksum"
	"github.com/starford/taskparser/internal/item"
	"github.com/starford/taskparser/internal/markdown"
	"github.com/starford/taskparser/internal/storage"
	"github.com/starford/taskparser/internal/tags"
)

// Parser fills an item collection from a vault. Every public method holds
// the same lock, so reparses are applied one at a time in call order.
type Parser struct {
	mu     sync.Mutex
	store  storage.Provider
	items  *item.Collection
	md     *markdown.Parser
	logger *slog.Logger
}

// New creates a parser writing into items.
func New(store storage.Provider, items *item.Collection, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		store:  store,
		items:  items,
		md:     markdown.NewParser(),
		logger: logger,
	}
}

// ParseDocument parses src as the content of file under the given folder tags.
func ParseDocument(md *markdown.Parser, src []byte, file string, folder tags.Map) (Result, error) {
	return Walk(md.Parse(src), NewScope(file, folder))
}

// Sync parses the whole vault and purges files that no longer exist or are
// now ignored.
func (p *Parser) Sync(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.syncDir(ctx, "")
}

// ParseDir reparses every file below dir, e.g. after its metadata changed.
func (p *Parser) ParseDir(ctx context.Context, dir string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.syncDir(ctx, cleanDir(dir))
}

// ParseFile purges the items of file and parses it again.
func (p *Parser) ParseFile(file string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.refresh(file, true)
	return err
}

// Refresh reparses file only when its content changed since the last parse.
// It reports whether the collection changed.
func (p *Parser) Refresh(file string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refresh(file, false)
}

// Remove purges the items of file.
func (p *Parser) Remove(file string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items.Remove(file)
}

// RemoveDir purges the items of every file below dir.
func (p *Parser) RemoveDir(dir string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items.RemoveUnder(cleanDir(dir), nil)
}

func (p *Parser) syncDir(ctx context.Context, dir string) error {
	folder, ignored := tags.Map{}, false
	if dir != "" {
		var err error
		if folder, ignored, err = p.folderTags(parentDir(dir)); err != nil {
			return err
		}
	}
	seen := make(map[string]struct{})
	if !ignored {
		if err := p.walkDir(ctx, dir, folder, seen); err != nil {
			return err
		}
	}
	for _, f := range p.items.RemoveUnder(dir, seen) {
		p.logger.Debug("parser: removed stale", slog.String("path", f))
	}
	return nil
}

// walkDir parses dir recursively. folder holds the tags of dir's ancestors.
func (p *Parser) walkDir(ctx context.Context, dir string, folder tags.Map, seen map[string]struct{}) error {
	meta, err := ReadFolderMeta(p.store, dir)
	if err != nil {
		return err
	}
	if meta.Ignore {
		p.logger.Debug("parser: ignoring folder", slog.String("path", dir))
		return nil
	}
	scoped := tags.Layer(folder, meta.Tags)

	entries, err := p.store.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := path.Join(dir, e.Name)
		switch {
		case e.IsDir:
			if strings.HasPrefix(e.Name, ".") {
				continue
			}
			if err := p.walkDir(ctx, rel, scoped, seen); err != nil {
				return err
			}
		case IsMarkdown(e.Name):
			found, err := p.parseFile(rel, scoped)
			if err != nil {
				return err
			}
			if found {
				seen[rel] = struct{}{}
			}
		}
	}
	return nil
}

// folderTags resolves the folder tags in effect for dir by reading the
// metadata file of every directory from the root down to dir.
func (p *Parser) folderTags(dir string) (tags.Map, bool, error) {
	folder := tags.Map{}
	cur := ""
	for _, part := range splitDir(dir) {
		meta, err := ReadFolderMeta(p.store, cur)
		if err != nil {
			return nil, false, err
		}
		if meta.Ignore {
			return nil, true, nil
		}
		folder.Merge(meta.Tags)
		cur = path.Join(cur, part)
	}
	meta, err := ReadFolderMeta(p.store, cur)
	if err != nil {
		return nil, false, err
	}
	if meta.Ignore {
		return nil, true, nil
	}
	folder.Merge(meta.Tags)
	return folder, false, nil
}

func (p *Parser) refresh(file string, force bool) (bool, error) {
	dir := parentDir(file)
	if hidden(dir) {
		return p.items.Remove(file), nil
	}
	folder, ignored, err := p.folderTags(dir)
	if err != nil {
		return false, err
	}
	if ignored {
		return p.items.Remove(file), nil
	}
	if !force {
		data, readErr := p.store.Read(file)
		if readErr == nil && checksum.Same(p.items.Checksum(file), data) {
			return false, nil
		}
	}
	if _, err := p.parseFile(file, folder); err != nil {
		return true, err
	}
	return true, nil
}

// parseFile purges and reparses one file. A missing file contributes zero
// items and reports found=false. On a parse error the file's items stay purged.
func (p *Parser) parseFile(file string, folder tags.Map) (found bool, err error) {
	data, err := p.store.Read(file)
	if err != nil {
		p.items.Remove(file)
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	res, err := ParseDocument(p.md, data, file, folder)
	if err != nil {
		p.items.Remove(file)
		return true, err
	}
	p.items.Replace(file, checksum.Sum(data), res.Tasks, res.Worklogs)
	p.logger.Debug("parser: parsed",
		slog.String("path", file),
		slog.Int("tasks", len(res.Tasks)),
		slog.Int("worklogs", len(res.Worklogs)))
	return true, nil
}

// IsMarkdown reports whether name has the .md extension.
func IsMarkdown(name string) bool {
	return strings.HasSuffix(name, ".md")
}

func cleanDir(dir string) string {
	dir = path.Clean(dir)
	if dir == "." || dir == "/" {
		return ""
	}
	return strings.TrimPrefix(dir, "/")
}

func parentDir(p string) string {
	if p == "" {
		return ""
	}
	return cleanDir(path.Dir(p))
}

func splitDir(dir string) []string {
	if dir == "" {
		return nil
	}
	return strings.Split(dir, "/")
}

// hidden reports whether any directory component of dir starts with a dot.
func hidden(dir string) bool {
	for _, part := range splitDir(dir) {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
