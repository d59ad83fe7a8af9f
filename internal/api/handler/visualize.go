package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/Rrens/datachat/internal/api/response"
	"github.com/Rrens/datachat/internal/session"
	"github.com/Rrens/datachat/internal/visualization"
)

// VisualizeHandler handles plot planning and generation endpoints
type VisualizeHandler struct {
	session   *session.Session
	outputDir string
}

// NewVisualizeHandler creates a new visualization handler
func NewVisualizeHandler(sess *session.Session, outputDir string) *VisualizeHandler {
	return &VisualizeHandler{session: sess, outputDir: outputDir}
}

// Plan returns per-category plot count hints and descriptions for the
// visualization selector
func (h *VisualizeHandler) Plan(w http.ResponseWriter, r *http.Request) {
	counts := h.session.Plan()
	if counts == nil {
		response.Conflict(w, "please load a dataset first")
		return
	}

	categories := make([]map[string]any, 0, len(visualization.Categories))
	for _, cat := range visualization.Categories {
		categories = append(categories, map[string]any{
			"name":        string(cat),
			"description": cat.Description(),
			"count":       counts[cat],
		})
	}

	response.OK(w, map[string]any{"categories": categories})
}

// GenerateRequest is the body for plot generation. A null categories field
// means all categories; an empty list generates nothing.
type GenerateRequest struct {
	Categories *[]string `json:"categories"`
}

// Generate produces the requested plots and returns their serving URLs
func (h *VisualizeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	var requested []visualization.Category
	if req.Categories != nil {
		requested = make([]visualization.Category, 0, len(*req.Categories))
		for _, name := range *req.Categories {
			cat, err := visualization.ParseCategory(name)
			if err != nil {
				response.BadRequest(w, err.Error())
				return
			}
			requested = append(requested, cat)
		}
	}

	paths, err := h.session.Visualize(h.outputDir, requested)
	if err != nil {
		if errors.Is(err, session.ErrNoDataset) {
			response.Conflict(w, "please load a dataset first")
			return
		}
		response.InternalError(w, err.Error())
		return
	}

	plots := make([]map[string]string, 0, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		plots = append(plots, map[string]string{
			"file": name,
			"url":  "/plots/" + name,
		})
	}

	response.OK(w, map[string]any{
		"count": len(paths),
		"plots": plots,
	})
}
