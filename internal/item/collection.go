package item

import (
	"slices"
	"strings"
	"sync"
)

type fileEntry struct {
	checksum string
	tasks    []*Task
	worklogs []*Worklog
}

// Collection holds the items of every parsed file, grouped per file in the
// order files were first added. Replacing a file's items is atomic with
// respect to readers and to other files.
type Collection struct {
	mu    sync.RWMutex
	order []string
	files map[string]*fileEntry
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{files: make(map[string]*fileEntry)}
}

// Replace purges every item previously recorded for file and stores the new
// ones. A file keeps its position in the collection across replacements.
func (c *Collection) Replace(file, checksum string, tasks []*Task, worklogs []*Worklog) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.files[file]; !ok {
		c.order = append(c.order, file)
	}
	c.files[file] = &fileEntry{checksum: checksum, tasks: tasks, worklogs: worklogs}
}

// Remove purges the items of file. It reports whether the file was known.
func (c *Collection) Remove(file string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remove(file)
}

func (c *Collection) remove(file string) bool {
	if _, ok := c.files[file]; !ok {
		return false
	}
	delete(c.files, file)
	c.order = slices.DeleteFunc(c.order, func(f string) bool { return f == file })
	return true
}

// RemoveUnder purges every file below dir ("" means everything) that is not
// in keep, and returns the purged paths.
func (c *Collection) RemoveUnder(dir string, keep map[string]struct{}) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stale []string
	for _, f := range c.order {
		if !under(dir, f) {
			continue
		}
		if _, ok := keep[f]; ok {
			continue
		}
		stale = append(stale, f)
	}
	for _, f := range stale {
		c.remove(f)
	}
	return stale
}

func under(dir, file string) bool {
	if dir == "" || dir == "." {
		return true
	}
	return file == dir || strings.HasPrefix(file, dir+"/")
}

// Checksum returns the digest recorded for file, or "" when unknown.
func (c *Collection) Checksum(file string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.files[file]; ok {
		return e.checksum
	}
	return ""
}

// Files returns the known files in collection order.
func (c *Collection) Files() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

// Tasks returns every task in document order.
func (c *Collection) Tasks() []*Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*Task
	for _, f := range c.order {
		out = append(out, c.files[f].tasks...)
	}
	return out
}

// Worklogs returns every worklog in document order.
func (c *Collection) Worklogs() []*Worklog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*Worklog
	for _, f := range c.order {
		out = append(out, c.files[f].worklogs...)
	}
	return out
}

// Items returns the tasks or worklogs as a slice of Item.
func (c *Collection) Items(kind Kind) []Item {
	var out []Item
	if kind == KindWorklog {
		for _, w := range c.Worklogs() {
			out = append(out, w)
		}
		return out
	}
	for _, t := range c.Tasks() {
		out = append(out, t)
	}
	return out
}

// Count returns the number of tasks and worklogs recorded for file.
func (c *Collection) Count(file string) (tasks, worklogs int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.files[file]; ok {
		return len(e.tasks), len(e.worklogs)
	}
	return 0, 0
}
