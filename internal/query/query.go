// Package query selects, orders and renders items of a collection.
package query

import (
	"context"
	"fmt"
	"io"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/taskparser/internal/expr"
	"github.com/starford/taskparser/internal/item"
	"github.com/starford/taskparser/internal/render"
	"github.com/starford/taskparser/internal/tags"
)

// DefaultTags is the tag selection used when none is given.
var DefaultTags = []string{tags.Text, tags.Checked, tags.File, tags.Date}

// Request describes one listing before compilation.
type Request struct {
	Kind    item.Kind
	Filter  string
	Sort    string
	Tags    []string
	Format  render.Format
	Columns int
}

// Validate checks the fields that do not need the expression compiler.
func (r Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind, validation.In(item.KindTask, item.KindWorklog)),
		validation.Field(&r.Tags, validation.Required, validation.Each(validation.Required)),
		validation.Field(&r.Format, validation.In(render.FormatTable, render.FormatCSV, render.FormatJSON)),
		validation.Field(&r.Columns, validation.Min(0)),
	)
}

// Query is a compiled Request. It is immutable and safe for concurrent use.
type Query struct {
	Kind    item.Kind
	Tags    []string
	Format  render.Format
	Options render.Options

	match expr.Predicate
	order expr.Comparator
}

// Compile validates req and compiles its expressions. Expression errors
// keep their type, so they match apperr.ErrInvalidExpression.
func Compile(req Request) (*Query, error) {
	if len(req.Tags) == 0 {
		req.Tags = slices.Clone(DefaultTags)
	}
	if req.Format == "" {
		req.Format = render.FormatTable
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	match, err := expr.CompileFilter(req.Filter)
	if err != nil {
		return nil, fmt.Errorf("query: filter: %w", err)
	}
	order, err := expr.CompileSort(req.Sort)
	if err != nil {
		return nil, fmt.Errorf("query: sort: %w", err)
	}
	return &Query{
		Kind:    req.Kind,
		Tags:    slices.Clone(req.Tags),
		Format:  req.Format,
		Options: render.Options{Columns: req.Columns},
		match:   match,
		order:   order,
	}, nil
}

// Apply filters items, then stably sorts what is left. The input slice is
// not modified.
func (q *Query) Apply(items []item.Item) []item.Item {
	out := make([]item.Item, 0, len(items))
	for _, it := range items {
		if q.match(it.TagMap()) {
			out = append(out, it)
		}
	}
	slices.SortStableFunc(out, func(a, b item.Item) int {
		return q.order(a.TagMap(), b.TagMap())
	})
	return out
}

// Rows projects items onto the selected tags.
func (q *Query) Rows(items []item.Item) []tags.Map {
	rows := make([]tags.Map, len(items))
	for i, it := range items {
		src := it.TagMap()
		row := make(tags.Map, len(q.Tags))
		for _, t := range q.Tags {
			row[t] = src[t]
		}
		rows[i] = row
	}
	return rows
}

// Render writes items, already filtered and sorted, in the query format.
func (q *Query) Render(w io.Writer, items []item.Item) error {
	return render.Render(w, q.Format, q.Rows(items), q.Tags, q.Options)
}

// WithColumns returns a copy of q rendering tables at the given width.
func (q *Query) WithColumns(columns int) *Query {
	c := *q
	c.Options.Columns = columns
	return &c
}

// Service runs queries against a live collection.
type Service struct {
	items *item.Collection
}

// NewService creates a query service over items.
func NewService(items *item.Collection) *Service {
	return &Service{items: items}
}

// List returns the items matching q, in q's order.
func (s *Service) List(_ context.Context, q *Query) []item.Item {
	return q.Apply(s.items.Items(q.Kind))
}

// Rows returns the matching items projected onto q's tags.
func (s *Service) Rows(ctx context.Context, q *Query) []tags.Map {
	return q.Rows(s.List(ctx, q))
}

// Render writes the matching items in q's format.
func (s *Service) Render(ctx context.Context, w io.Writer, q *Query) error {
	return q.Render(w, s.List(ctx, q))
}

// FileSummary counts the items one file contributed.
type FileSummary struct {
	Path     string `json:"path"`
	Tasks    int    `json:"tasks"`
	Worklogs int    `json:"worklogs"`
}

// Files lists every parsed file in collection order.
func (s *Service) Files(_ context.Context) []FileSummary {
	files := s.items.Files()
	out := make([]FileSummary, 0, len(files))
	for _, f := range files {
		t, w := s.items.Count(f)
		out = append(out, FileSummary{Path: f, Tasks: t, Worklogs: w})
	}
	return out
}

// Counts returns the number of tasks and worklogs in the collection.
func (s *Service) Counts(_ context.Context) (tasks, worklogs int) {
	return len(s.items.Tasks()), len(s.items.Worklogs())
}
