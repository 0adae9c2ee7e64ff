// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the parsed tasks and worklogs to LLM clients via stdio transport.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/taskparser/internal/apperr"
	"github.com/starford/taskparser/internal/item"
	"github.com/starford/taskparser/internal/parser"
	"github.com/starford/taskparser/internal/query"
	"github.com/starford/taskparser/internal/render"
	"github.com/starford/taskparser/internal/storage"
	"github.com/starford/taskparser/internal/today"
)

// SyntaxURI is the resource URI of the syntax contract.
const SyntaxURI = "taskparser://syntax"

// Server wraps the MCP server with taskparser tools.
type Server struct {
	mcp      *server.MCPServer
	store    storage.Provider
	svc      *query.Service
	parser   *parser.Parser
	defaults query.Request
	now      func() time.Time
}

// New creates a new MCP server with all tools registered. defaults supplies
// tags and expressions for calls that omit them.
func New(store storage.Provider, svc *query.Service, p *parser.Parser, defaults query.Request) *Server {
	s := &Server{store: store, svc: svc, parser: p, defaults: defaults, now: time.Now}

	s.mcp = server.NewMCPServer(
		"Taskparser",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	listOptions := func(what string) []mcp.ToolOption {
		return []mcp.ToolOption{
			mcp.WithDescription("List " + what + " parsed from the vault, filtered and sorted with the " +
				"taskparser expression syntax (see get_syntax or the " + SyntaxURI + " resource)."),
			mcp.WithString("filter", mcp.Description("Filter expression, e.g. checked(=false),date(>=20240301)")),
			mcp.WithString("sort", mcp.Description("Sort expression, e.g. date(desc),text(asc)")),
			mcp.WithString("tags", mcp.Description("Comma-separated tags to return, e.g. text,checked,file")),
			mcp.WithString("format", mcp.Description("Output format: json (default), csv or table")),
		}
	}

	s.mcp.AddTool(mcp.NewTool("list_tasks", listOptions("tasks")...), s.listTasks)
	s.mcp.AddTool(mcp.NewTool("list_worklogs", listOptions("worklogs")...), s.listWorklogs)

	s.mcp.AddTool(mcp.NewTool("list_files",
		mcp.WithDescription("List the parsed Markdown files with their task and worklog counts."),
	), s.listFiles)

	s.mcp.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read the raw Markdown of a vault file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the file (e.g. log/2024-03-05.md)")),
	), s.readFile)

	s.mcp.AddTool(mcp.NewTool("create_today",
		mcp.WithDescription("Create today's worklog file named YYYY-MM-DD-<title-slug>.md with "+
			"Worklogs and Notes sections. Never overwrites an existing file."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the day")),
		mcp.WithString("folder", mcp.Description("Optional folder for the file (empty for the vault root)")),
	), s.createToday)

	s.mcp.AddTool(mcp.NewTool("get_syntax",
		mcp.WithDescription("Returns the tag, worklog and expression syntax. "+
			"Call this before writing filter or sort expressions."),
	), s.getSyntax)

	s.mcp.AddResource(
		mcp.NewResource(SyntaxURI, "Taskparser Syntax",
			mcp.WithResourceDescription("How tasks, worklogs, tags and query expressions are written."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSyntaxResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.list(ctx, req, item.KindTask)
}

func (s *Server) listWorklogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.list(ctx, req, item.KindWorklog)
}

func (s *Server) list(ctx context.Context, req mcp.CallToolRequest, kind item.Kind) (*mcp.CallToolResult, error) {
	qr := s.defaults
	qr.Kind = kind
	qr.Format = render.FormatJSON
	qr.Columns = 0

	if v := req.GetString("filter", ""); v != "" {
		qr.Filter = v
	}
	if v := req.GetString("sort", ""); v != "" {
		qr.Sort = v
	}
	if v := req.GetString("tags", ""); v != "" {
		qr.Tags = render.ParseTags(v)
	}
	if v := req.GetString("format", ""); v != "" {
		format, err := render.ParseFormat(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		qr.Format = format
	}

	q, err := query.Compile(qr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var buf bytes.Buffer
	if err := s.svc.Render(ctx, &buf, q); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) listFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files := s.svc.Files(ctx)
	if len(files) == 0 {
		return mcp.NewToolResultText("no files parsed"), nil
	}
	out, _ := json.MarshalIndent(files, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !parser.IsMarkdown(path) {
		return mcp.NewToolResultError(fmt.Sprintf("not a markdown file: %s", path)), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createToday(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	folder := strings.Trim(req.GetString("folder", ""), "/")

	path, err := today.Create(s.store, folder, s.now(), title)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return mcp.NewToolResultError(fmt.Sprintf("file already exists: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.parser != nil {
		if err := s.parser.ParseFile(path); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) getSyntax(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SyntaxContract), nil
}

func (s *Server) readSyntaxResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SyntaxURI,
			MIMEType: "text/markdown",
			Text:     SyntaxContract,
		},
	}, nil
}
