package api

import (
	"github.com/starford/kramify/internal/convert"
	"github.com/starford/kramify/internal/inspect"
	"github.com/starford/kramify/internal/models"
	"github.com/starford/kramify/internal/pipeline"
)

// ConvertResponse is returned by POST /api/convert.
type ConvertResponse struct {
	Content     string `json:"content" example:"[site](https://example.com){: target=\"_blank\" }" validate:"required"`
	Generator   string `json:"generator" example:"jekyll" validate:"required"`
	Images      int    `json:"images" example:"1"`
	Links       int    `json:"links" example:"2"`
	Callouts    int    `json:"callouts" example:"0"`
	Skipped     int    `json:"skipped" example:"0"`
	PrunedLines int    `json:"pruned_lines" example:"0"`
}

func newConvertResponse(gen convert.Generator, res convert.Result) ConvertResponse {
	return ConvertResponse{
		Content:     res.Content,
		Generator:   gen.String(),
		Images:      res.Images,
		Links:       res.Links,
		Callouts:    res.Callouts,
		Skipped:     res.Skipped,
		PrunedLines: res.PrunedLines,
	}
}

// DocumentListResponse wraps the ledger listing.
type DocumentListResponse struct {
	Documents []models.ConversionRecord `json:"documents" validate:"required"`
	Total     int                       `json:"total" example:"42" validate:"required"`
}

// InspectResponse wraps per-document link reports.
type InspectResponse struct {
	Documents []inspect.Report `json:"documents" validate:"required"`
}

// RunResponse is the summary of a full pass.
type RunResponse = pipeline.Summary
