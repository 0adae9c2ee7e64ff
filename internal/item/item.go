// Package item defines the tasks and worklogs produced by parsing and the
// collection that holds them between parses.
package item

import (
	"fmt"
	"strings"

	"github.com/starford/taskparser/internal/tags"
)

// Kind selects tasks or worklogs.
type Kind int

const (
	KindTask Kind = iota
	KindWorklog
)

func (k Kind) String() string {
	if k == KindWorklog {
		return "worklog"
	}
	return "task"
}

// ParseKind accepts "task", "worklog" and their plurals.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "task", "tasks", "":
		return KindTask, nil
	case "worklog", "worklogs":
		return KindWorklog, nil
	}
	return KindTask, fmt.Errorf("item: unknown kind %q", s)
}

// Item is anything carrying tags that originated in a file.
type Item interface {
	TagMap() tags.Map
	SourceFile() string
}

// Task is a checklist entry. It owns the worklogs logged beneath it.
type Task struct {
	Tags     tags.Map
	File     string
	Worklogs []*Worklog
}

// Worklog is a time-logged list entry. Task points back at the enclosing
// task and is nil for worklogs logged outside any task.
type Worklog struct {
	Tags tags.Map
	File string
	Task *Task `json:"-"`
}

// TagMap returns the task's resolved tags.
func (t *Task) TagMap() tags.Map { return t.Tags }

// SourceFile returns the vault-relative path of the file the task came from.
func (t *Task) SourceFile() string { return t.File }

// TagMap returns the worklog's resolved tags.
func (w *Worklog) TagMap() tags.Map { return w.Tags }

// SourceFile returns the vault-relative path of the file the worklog came from.
func (w *Worklog) SourceFile() string { return w.File }
