package parser

import (
	"regexp"
	"strconv"

	"github.com/starford/taskparser/internal/item"
	"github.com/starford/taskparser/internal/markdown"
	"github.com/starford/taskparser/internal/tags"
)

// TagsLanguage is the fenced code block language whose YAML body adds tags
// to the enclosing heading section.
const TagsLanguage = "tags"

// worklogRe matches the leading worklog marker, e.g. "WL:2.5h ".
var worklogRe = regexp.MustCompile(`^WL:(\d{1,2}(?:\.\d{1,2})?)[hH]\s+`)

// matchWorklog splits a worklog marker off text.
func matchWorklog(text string) (hours, rest string, ok bool) {
	m := worklogRe.FindStringSubmatchIndex(text)
	if m == nil {
		return "", "", false
	}
	return text[m[2]:m[3]], text[m[1]:], true
}

// Result holds the items found in one document, in document order.
type Result struct {
	Tasks    []*item.Task
	Worklogs []*item.Worklog
}

type openTask struct {
	task     *item.Task
	base     tags.Map
	inline   tags.Map
	internal tags.Map
	hasText  bool
}

type openWorklog struct {
	worklog  *item.Worklog
	base     tags.Map
	inline   tags.Map
	internal tags.Map
	hasText  bool
	marker   *markdown.Text
	rest     string
}

// open is the pair of items currently being built around a node.
type open struct {
	task    *openTask
	worklog *openWorklog
}

type walker struct {
	out Result
}

// Walk converts a parsed document into tasks and worklogs under scope.
// YAML front-matter and tags code blocks that fail to parse abort the walk.
func Walk(doc *markdown.Document, scope Scope) (Result, error) {
	w := &walker{}
	if _, err := w.walk(doc, scope, open{}); err != nil {
		return Result{}, err
	}
	return w.out, nil
}

// walk visits n and returns the scope in effect for the siblings after it.
func (w *walker) walk(n markdown.Node, s Scope, cur open) (Scope, error) {
	switch v := n.(type) {
	case *markdown.Document:
		return w.walkChildren(v.Children, s, cur)

	case *markdown.YAMLBlock:
		m := tags.Map{}
		if err := tags.FromYAML([]byte(v.Body), m); err != nil {
			return s, newYAMLError(s.File(), v.Line, err)
		}
		return s.withFileTags(m), nil

	case *markdown.Heading:
		m := tags.Map{}
		tags.Extract(v.Text, m)
		return s.withHeading(v.Depth, m), nil

	case *markdown.CodeBlock:
		if v.Lang != TagsLanguage {
			return s, nil
		}
		m := tags.Map{}
		if err := tags.FromYAML([]byte(v.Body), m); err != nil {
			return s, newYAMLError(s.File(), v.Line, err)
		}
		return s.withSectionTags(m), nil

	case *markdown.ListItem:
		return s, w.walkListItem(v, s, cur)

	case *markdown.Text:
		w.text(v, cur)
		return s, nil

	case *markdown.Generic:
		return w.walkChildren(v.Children, s, cur)
	}
	return s, nil
}

func (w *walker) walkChildren(children []markdown.Node, s Scope, cur open) (Scope, error) {
	var err error
	for _, c := range children {
		if s, err = w.walk(c, s, cur); err != nil {
			return s, err
		}
	}
	return s, nil
}

// walkListItem opens a task or a worklog around the item when it qualifies.
// Scope changes inside the item, such as nested headings, stay inside it.
func (w *walker) walkListItem(li *markdown.ListItem, s Scope, cur open) error {
	if cur.task == nil && li.Checked != nil {
		t := &openTask{
			task:   &item.Task{File: s.File()},
			base:   s.snapshot(),
			inline: tags.Map{},
			internal: tags.Map{
				tags.File:    s.File(),
				tags.Line:    strconv.Itoa(li.Line),
				tags.Checked: strconv.FormatBool(*li.Checked),
			},
		}
		if _, err := w.walkChildren(li.Children, s, open{task: t}); err != nil {
			return err
		}
		w.closeTask(t)
		return nil
	}

	if cur.worklog == nil {
		if first := markdown.FirstText(li); first != nil {
			if hours, rest, ok := matchWorklog(first.Value); ok {
				wl := w.openWorklog(li, s, cur.task, first, hours, rest)
				if _, err := w.walkChildren(li.Children, s, open{task: cur.task, worklog: wl}); err != nil {
					return err
				}
				w.closeWorklog(wl, cur.task)
				return nil
			}
		}
	}

	_, err := w.walkChildren(li.Children, s, cur)
	return err
}

func (w *walker) openWorklog(li *markdown.ListItem, s Scope, task *openTask, first *markdown.Text, hours, rest string) *openWorklog {
	base := s.snapshot()
	if task != nil {
		base.Merge(task.inline)
	}
	return &openWorklog{
		worklog: &item.Worklog{File: s.File()},
		base:    base,
		inline:  tags.Map{},
		internal: tags.Map{
			tags.File:  s.File(),
			tags.Line:  strconv.Itoa(li.Line),
			tags.Hours: hours,
		},
		marker: first,
		rest:   rest,
	}
}

// text routes a text run into the innermost open item. Only the first run of
// an item becomes its text tag.
func (w *walker) text(t *markdown.Text, cur open) {
	if wl := cur.worklog; wl != nil {
		value := t.Value
		if t == wl.marker {
			value = wl.rest
		}
		stripped := tags.Extract(value, wl.inline)
		if !wl.hasText {
			wl.internal[tags.Text] = stripped
			wl.hasText = true
		}
		return
	}
	if task := cur.task; task != nil {
		stripped := tags.Extract(t.Value, task.inline)
		if !task.hasText {
			task.internal[tags.Text] = stripped
			task.hasText = true
		}
	}
}

func (w *walker) closeTask(t *openTask) {
	if !t.hasText {
		t.internal[tags.Text] = ""
	}
	t.task.Tags = tags.Layer(t.base, t.inline, t.internal)
	w.out.Tasks = append(w.out.Tasks, t.task)
}

func (w *walker) closeWorklog(wl *openWorklog, task *openTask) {
	if !wl.hasText {
		wl.internal[tags.Text] = ""
	}
	tagMap := tags.Layer(wl.base, wl.inline, wl.internal)
	delete(tagMap, tags.Checked)
	wl.worklog.Tags = tagMap
	if task != nil {
		wl.worklog.Task = task.task
		task.task.Worklogs = append(task.task.Worklogs, wl.worklog)
	}
	w.out.Worklogs = append(w.out.Worklogs, wl.worklog)
}
