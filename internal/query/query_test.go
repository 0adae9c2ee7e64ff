package query

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/taskparser/internal/apperr"
	"github.com/starford/taskparser/internal/item"
	"github.com/starford/taskparser/internal/render"
	"github.com/starford/taskparser/internal/tags"
)

func collection() *item.Collection {
	c := item.NewCollection()
	c.Replace("a.md", "", []*item.Task{
		{File: "a.md", Tags: tags.Map{"text": "one", "checked": "true", "date": "20240302"}},
		{File: "a.md", Tags: tags.Map{"text": "two", "checked": "false"}},
	}, []*item.Worklog{
		{File: "a.md", Tags: tags.Map{"text": "log", "hours": "1.5"}},
	})
	c.Replace("b.md", "", []*item.Task{
		{File: "b.md", Tags: tags.Map{"text": "three", "checked": "false", "date": "20240301"}},
		{File: "b.md", Tags: tags.Map{"text": "four", "checked": "true", "date": "20240301"}},
	}, nil)
	return c
}

func texts(items []item.Item) string {
	var out []string
	for _, it := range items {
		out = append(out, it.TagMap()["text"])
	}
	return strings.Join(out, ",")
}

func TestCompile_Defaults(t *testing.T) {
	q, err := Compile(Request{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(q.Tags, ",") != "text,checked,file,date" {
		t.Errorf("tags = %v", q.Tags)
	}
	if q.Format != render.FormatTable {
		t.Errorf("format = %q", q.Format)
	}
}

func TestCompile_Errors(t *testing.T) {
	if _, err := Compile(Request{Filter: "checked(true)"}); !errors.Is(err, apperr.ErrInvalidExpression) {
		t.Errorf("bad filter err = %v", err)
	}
	if _, err := Compile(Request{Sort: "date(up)"}); !errors.Is(err, apperr.ErrInvalidExpression) {
		t.Errorf("bad sort err = %v", err)
	}
	if _, err := Compile(Request{Filter: "owner(is bob)"}); !errors.Is(err, apperr.ErrNullReference) {
		t.Errorf("bad null err = %v", err)
	}
	if _, err := Compile(Request{Format: "xml"}); err == nil {
		t.Error("expected an error for an unknown format")
	}
	if _, err := Compile(Request{Tags: []string{"text", ""}}); err == nil {
		t.Error("expected an error for a blank tag")
	}
	if _, err := Compile(Request{Columns: -1}); err == nil {
		t.Error("expected an error for negative columns")
	}
}

func TestService_FilterThenStableSort(t *testing.T) {
	svc := NewService(collection())
	q, err := Compile(Request{Filter: "date(not null)", Sort: "date(asc)"})
	if err != nil {
		t.Fatal(err)
	}
	if got := texts(svc.List(context.Background(), q)); got != "three,four,one" {
		t.Errorf("list = %s", got)
	}

	q, err = Compile(Request{Sort: "date(desc)"})
	if err != nil {
		t.Fatal(err)
	}
	if got := texts(svc.List(context.Background(), q)); got != "one,three,four,two" {
		t.Errorf("list = %s", got)
	}
}

func TestService_CheckedFilter(t *testing.T) {
	svc := NewService(collection())
	q, err := Compile(Request{Filter: "checked(=true)"})
	if err != nil {
		t.Fatal(err)
	}
	if got := texts(svc.List(context.Background(), q)); got != "one,four" {
		t.Errorf("list = %s", got)
	}
}

func TestService_Worklogs(t *testing.T) {
	svc := NewService(collection())
	q, err := Compile(Request{Kind: item.KindWorklog, Tags: []string{"hours", "text"}, Format: render.FormatCSV})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := svc.Render(context.Background(), &buf, q); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "hours,text\n1.5,log\n" {
		t.Errorf("csv = %q", got)
	}
}

func TestQuery_RowsProjectSelectedTags(t *testing.T) {
	svc := NewService(collection())
	q, err := Compile(Request{Tags: []string{"text", "missing"}, Filter: "text(=two)"})
	if err != nil {
		t.Fatal(err)
	}
	rows := svc.Rows(context.Background(), q)
	if len(rows) != 1 || len(rows[0]) != 2 || rows[0]["text"] != "two" || rows[0]["missing"] != "" {
		t.Errorf("rows = %v", rows)
	}
}

func TestQuery_ApplyDoesNotMutateInput(t *testing.T) {
	c := collection()
	items := c.Items(item.KindTask)
	before := texts(items)
	q, err := Compile(Request{Sort: "text(asc)"})
	if err != nil {
		t.Fatal(err)
	}
	q.Apply(items)
	if texts(items) != before {
		t.Errorf("input reordered: %s", texts(items))
	}
}
