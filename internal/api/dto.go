package api

import "github.com/starford/taskparser/internal/query"

// FileSummary is one entry of the file listing (aliased from the query layer).
type FileSummary = query.FileSummary

// FilesResponse wraps the file listing.
type FilesResponse struct {
	Files    []FileSummary `json:"files" validate:"required"`
	Tasks    int           `json:"tasks" example:"42" validate:"required"`
	Worklogs int           `json:"worklogs" example:"7" validate:"required"`
}
