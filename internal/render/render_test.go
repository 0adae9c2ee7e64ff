package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/starford/taskparser/internal/apperr"
	"github.com/starford/taskparser/internal/tags"
	"github.com/starford/taskparser/internal/wcwidth"
)

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestTable_Layout(t *testing.T) {
	rows := []tags.Map{
		{"text": "Buy milk", "file": "a.md"},
		{"text": "Call bank", "file": "notes/b.md", "extra": "x"},
	}
	var buf bytes.Buffer
	if err := Table(&buf, rows, []string{"text", "file"}, Options{}); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"text      | file      ",
		"----      | ----      ",
		"Buy milk  | a.md      ",
		"Call bank | notes/b.md",
	}
	got := lines(buf.String())
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("table =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestTable_WideCharactersAlign(t *testing.T) {
	rows := []tags.Map{
		{"text": "日本語", "file": "a.md"},
		{"text": "abc", "file": "b.md"},
	}
	var buf bytes.Buffer
	if err := Table(&buf, rows, []string{"text", "file"}, Options{}); err != nil {
		t.Fatal(err)
	}
	got := lines(buf.String())
	if got[2] != "日本語 | a.md" || got[3] != "abc    | b.md" {
		t.Errorf("rows = %q", got[2:])
	}
	for _, l := range got {
		if w := wcwidth.Width(l); w != 13 {
			t.Errorf("line %q has width %d, want 13", l, w)
		}
	}
}

func TestTable_TruncatesTextToTerminalWidth(t *testing.T) {
	rows := []tags.Map{
		{"text": "これは非常に長いタスクの説明です", "file": "a.md"},
		{"text": "short", "file": "b.md"},
	}
	const columns = 20
	var buf bytes.Buffer
	if err := Table(&buf, rows, []string{"text", "file"}, Options{Columns: columns}); err != nil {
		t.Fatal(err)
	}
	got := lines(buf.String())
	for _, l := range got {
		if w := wcwidth.Width(l); w > columns {
			t.Errorf("line %q has width %d > %d", l, w, columns)
		}
	}
	first := strings.Split(got[2], " | ")[0]
	if strings.Count(first, wcwidth.Ellipsis) != 1 || !strings.HasSuffix(strings.TrimRight(first, " "), wcwidth.Ellipsis) {
		t.Errorf("truncated cell = %q, want one trailing ellipsis", first)
	}
	if !strings.HasPrefix(first, "これは非常に") {
		t.Errorf("truncated cell = %q", first)
	}
	if want := "short" + strings.Repeat(" ", 8) + " | b.md"; got[3] != want {
		t.Errorf("short row = %q", got[3])
	}
}

func TestTable_TextNeverShrinksBelowHeader(t *testing.T) {
	rows := []tags.Map{{"text": "a fairly long description", "file": "some/long/path/file.md"}}
	var buf bytes.Buffer
	if err := Table(&buf, rows, []string{"text", "file"}, Options{Columns: 10}); err != nil {
		t.Fatal(err)
	}
	for _, l := range lines(buf.String()) {
		if w := wcwidth.Width(l); w > 10 {
			t.Errorf("line %q has width %d > 10", l, w)
		}
	}
	if got := lines(buf.String())[2]; !strings.HasPrefix(got, "a f"+wcwidth.Ellipsis+" | ") {
		t.Errorf("row = %q", got)
	}
}

func TestTable_CheckedAndHoursColumns(t *testing.T) {
	rows := []tags.Map{
		{"checked": "true", "hours": "2.5", "text": "done"},
		{"checked": "false", "hours": "1", "text": "todo"},
	}
	var buf bytes.Buffer
	if err := Table(&buf, rows, []string{"checked", "hours", "text"}, Options{}); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"c | hrs | text",
		"- | --- | ----",
		"✔ | 2.5 | done",
		"  | 1   | todo",
	}
	got := lines(buf.String())
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("table =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Table(&buf, nil, []string{"text"}, Options{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "text\n----\n" {
		t.Errorf("table = %q", buf.String())
	}
}

func TestCSVAndJSON_RoundTrip(t *testing.T) {
	rows := []tags.Map{
		{"text": "Buy milk, eggs", "checked": "false", "file": "a.md", "unused": "x"},
		{"text": "Say \"hi\"", "checked": "true"},
		{"text": "日本語", "file": "b.md", "checked": "true"},
	}
	show := []string{"text", "checked", "file"}

	var csvBuf, jsonBuf bytes.Buffer
	if err := CSV(&csvBuf, rows, show); err != nil {
		t.Fatal(err)
	}
	if err := JSON(&jsonBuf, rows, show); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&csvBuf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	var objects []map[string]string
	if err := json.Unmarshal(jsonBuf.Bytes(), &objects); err != nil {
		t.Fatalf("read json: %v", err)
	}

	header := records[0]
	if strings.Join(header, ",") != strings.Join(show, ",") {
		t.Fatalf("csv header = %v", header)
	}
	if len(records)-1 != len(objects) {
		t.Fatalf("csv rows = %d, json objects = %d", len(records)-1, len(objects))
	}
	for i, obj := range objects {
		if len(obj) != len(show) {
			t.Errorf("object %d has keys %v, want %v", i, obj, show)
		}
		for j, tag := range header {
			if records[i+1][j] != obj[tag] {
				t.Errorf("row %d tag %s: csv %q, json %q", i, tag, records[i+1][j], obj[tag])
			}
		}
	}
}

func TestJSON_KeepsTagOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, []tags.Map{{"b": "1", "a": "2"}}, []string{"b", "a"}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != `[{"b":"1","a":"2"}]`+"\n" {
		t.Errorf("json = %q", got)
	}
}

func TestJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, nil, []string{"text"}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "[]\n" {
		t.Errorf("json = %q", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatTable, "tabular": FormatTable, "TABLE": FormatTable, "csv": FormatCSV, "json": FormatJSON}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, apperr.ErrUnknownFormat) {
		t.Errorf("ParseFormat(xml) err = %v", err)
	}
}

func TestParseTags(t *testing.T) {
	got := ParseTags(" text, checked,,file ")
	if strings.Join(got, "|") != "text|checked|file" {
		t.Errorf("ParseTags = %v", got)
	}
}
