package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/taskparser/internal/apperr"
	"github.com/starford/taskparser/internal/item"
	"github.com/starford/taskparser/internal/query"
	"github.com/starford/taskparser/internal/render"
)

var contentTypes = map[render.Format]string{
	render.FormatJSON:  "application/json; charset=utf-8",
	render.FormatCSV:   "text/csv; charset=utf-8",
	render.FormatTable: "text/plain; charset=utf-8",
}

// Handler holds API route handlers.
type Handler struct {
	svc      *query.Service
	defaults query.Request
}

// NewHandler creates a new Handler. Requests that omit a parameter fall back
// to the value in defaults; the response format defaults to JSON.
func NewHandler(svc *query.Service, defaults query.Request) *Handler {
	return &Handler{svc: svc, defaults: defaults}
}

// ListTasks handles GET /api/tasks.
//
//	@Summary		List tasks, filtered, sorted and rendered
//	@Tags			items
//	@Produce		json,text/csv,text/plain
//	@Param			filter	query		string	false	"Filter expression, e.g. checked(=false)"
//	@Param			sort	query		string	false	"Sort expression, e.g. date(asc)"
//	@Param			tags	query		string	false	"Comma-separated tags to show"
//	@Param			format	query		string	false	"Output format"	Enums(json, csv, table)
//	@Param			columns	query		int		false	"Table width"
//	@Success		200		{array}		object
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks [get]
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, item.KindTask)
}

// ListWorklogs handles GET /api/worklogs.
//
//	@Summary		List worklogs, filtered, sorted and rendered
//	@Tags			items
//	@Produce		json,text/csv,text/plain
//	@Param			filter	query		string	false	"Filter expression, e.g. hours(>=1)"
//	@Param			sort	query		string	false	"Sort expression, e.g. date(desc)"
//	@Param			tags	query		string	false	"Comma-separated tags to show"
//	@Param			format	query		string	false	"Output format"	Enums(json, csv, table)
//	@Param			columns	query		int		false	"Table width"
//	@Success		200		{array}		object
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/worklogs [get]
func (h *Handler) ListWorklogs(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, item.KindWorklog)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, kind item.Kind) {
	req, err := h.request(r, kind)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	q, err := query.Compile(req)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidExpression) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		} else {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid query: "+err.Error()))
		}
		return
	}

	var buf bytes.Buffer
	if err := h.svc.Render(r.Context(), &buf, q); err != nil {
		slog.Error("render failed", slog.String("kind", kind.String()), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.Header().Set("Content-Type", contentTypes[q.Format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// request merges the URL parameters over the handler defaults.
func (h *Handler) request(r *http.Request, kind item.Kind) (query.Request, error) {
	params := r.URL.Query()
	req := h.defaults
	req.Kind = kind
	req.Format = render.FormatJSON
	req.Columns = 0

	if params.Has("filter") {
		req.Filter = params.Get("filter")
	}
	if params.Has("sort") {
		req.Sort = params.Get("sort")
	}
	if v := params.Get("tags"); v != "" {
		req.Tags = render.ParseTags(v)
	}
	if v := params.Get("format"); v != "" {
		format, err := render.ParseFormat(v)
		if err != nil {
			return req, err
		}
		req.Format = format
	}
	if v := params.Get("columns"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return req, errors.New("columns must be a non-negative integer")
		}
		req.Columns = n
	}
	return req, nil
}

// ListFiles handles GET /api/files.
//
//	@Summary		List parsed files with their item counts
//	@Tags			items
//	@Produce		json
//	@Success		200		{object}	FilesResponse
//	@Security		BearerAuth
//	@Router			/files [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	tasks, worklogs := h.svc.Counts(r.Context())
	writeJSON(w, http.StatusOK, FilesResponse{
		Files:    h.svc.Files(r.Context()),
		Tasks:    tasks,
		Worklogs: worklogs,
	})
}
