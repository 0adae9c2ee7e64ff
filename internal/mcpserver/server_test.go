package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/taskparser/internal/item"
	"github.com/starford/taskparser/internal/parser"
	"github.com/starford/taskparser/internal/query"
	"github.com/starford/taskparser/internal/storage"
	"github.com/starford/taskparser/internal/testutil"
)

const sprintNote = `# Sprint #sprint(12)

- [ ] Write docs #prio(low)
- [x] Fix login #prio(high)
  - WL:1.5h Debugged session handling
`

func testServer(t *testing.T) (*Server, storage.Provider, *item.Collection) {
	t.Helper()
	dir, store := testutil.TestVault(t)
	testutil.WriteFile(t, dir, "2024-03-01-sprint.md", sprintNote)

	items := item.NewCollection()
	p := parser.New(store, items, nil)
	if err := p.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	srv := New(store, query.NewService(items), p, query.Request{})
	srv.now = func() time.Time { return time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC) }
	return srv, store, items
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_tasks":
		result, err = srv.listTasks(ctx, req)
	case "list_worklogs":
		result, err = srv.listWorklogs(ctx, req)
	case "list_files":
		result, err = srv.listFiles(ctx, req)
	case "read_file":
		result, err = srv.readFile(ctx, req)
	case "create_today":
		result, err = srv.createToday(ctx, req)
	case "get_syntax":
		result, err = srv.getSyntax(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s returned error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	if tc, ok := r.Content[0].(mcp.TextContent); ok {
		return tc.Text
	}
	return ""
}

func decodeRows(t *testing.T, r *mcp.CallToolResult) []map[string]string {
	t.Helper()
	var rows []map[string]string
	if err := json.Unmarshal([]byte(resultText(r)), &rows); err != nil {
		t.Fatalf("decode %q: %v", resultText(r), err)
	}
	return rows
}

func TestListTasks_DefaultsToJSON(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "list_tasks", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	rows := decodeRows(t, r)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["text"] != "Write docs" || rows[0]["date"] != "20240301" {
		t.Errorf("first row = %v", rows[0])
	}
}

func TestListTasks_FilterSortTags(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "list_tasks", map[string]interface{}{
		"filter": "sprint(=12)",
		"sort":   "prio(asc)",
		"tags":   "text,prio",
	})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	rows := decodeRows(t, r)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["prio"] != "high" || rows[1]["prio"] != "low" {
		t.Errorf("rows = %v", rows)
	}
	if len(rows[0]) != 2 {
		t.Errorf("row keys = %v", rows[0])
	}
}

func TestListTasks_InvalidFilter(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "list_tasks", map[string]interface{}{"filter": "prio(~high)"})
	if !r.IsError {
		t.Error("expected error for invalid filter")
	}
}

func TestListTasks_UnknownFormat(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "list_tasks", map[string]interface{}{"format": "xml"})
	if !r.IsError {
		t.Error("expected error for unknown format")
	}
}

func TestListWorklogs_CSV(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "list_worklogs", map[string]interface{}{
		"tags":   "hours,text,prio",
		"format": "csv",
	})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	want := "hours,text,prio\n1.5,Debugged session handling,high\n"
	if got := resultText(r); got != want {
		t.Errorf("csv = %q, want %q", got, want)
	}
}

func TestListFiles(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "list_files", nil)
	text := resultText(r)
	if !strings.Contains(text, "2024-03-01-sprint.md") {
		t.Errorf("files = %s", text)
	}
	var files []query.FileSummary
	if err := json.Unmarshal([]byte(text), &files); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(files) != 1 || files[0].Tasks != 2 || files[0].Worklogs != 1 {
		t.Errorf("files = %+v", files)
	}
}

func TestReadFile(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "read_file", map[string]interface{}{"path": "2024-03-01-sprint.md"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if resultText(r) != sprintNote {
		t.Errorf("content = %q", resultText(r))
	}
}

func TestReadFile_Errors(t *testing.T) {
	srv, _, _ := testServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing path", map[string]interface{}{}},
		{"not found", map[string]interface{}{"path": "nope.md"}},
		{"not markdown", map[string]interface{}{"path": "notes.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := callTool(t, srv, "read_file", tt.args)
			if !r.IsError {
				t.Errorf("expected error, got %q", resultText(r))
			}
		})
	}
}

func TestCreateToday(t *testing.T) {
	srv, store, items := testServer(t)

	r := callTool(t, srv, "create_today", map[string]interface{}{
		"title":  "Sprint Review",
		"folder": "log",
	})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	const want = "log/2024-03-05-sprint-review.md"
	if !strings.Contains(resultText(r), want) {
		t.Errorf("result = %q", resultText(r))
	}
	if !store.Exists(want) {
		t.Fatalf("%s not written", want)
	}
	if items.Checksum(want) == "" {
		t.Errorf("%s not parsed into the collection", want)
	}

	r = callTool(t, srv, "create_today", map[string]interface{}{
		"title":  "Sprint Review",
		"folder": "log",
	})
	if !r.IsError {
		t.Error("expected error when the file exists")
	}
}

func TestCreateToday_MissingTitle(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "create_today", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing title")
	}
}

func TestGetSyntax(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "get_syntax", nil)
	text := resultText(r)
	for _, want := range []string{"WL:", "is null", "tag(desc)", ".taskparser.yaml"} {
		if !strings.Contains(text, want) {
			t.Errorf("syntax missing %q", want)
		}
	}
}

func TestSyntaxResource(t *testing.T) {
	srv, _, _ := testServer(t)

	contents, err := srv.readSyntaxResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != SyntaxURI || tc.Text != SyntaxContract {
		t.Errorf("resource = %+v", contents[0])
	}
}
