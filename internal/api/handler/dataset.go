package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rrens/datachat/internal/api/response"
	"github.com/Rrens/datachat/internal/dataset"
	"github.com/Rrens/datachat/internal/session"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

const previewRows = 10

// DatasetHandler handles dataset load, preview and clear endpoints
type DatasetHandler struct {
	session     *session.Session
	uploadDir   string
	maxUploadMB int64
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(sess *session.Session, uploadDir string, maxUploadMB int64) *DatasetHandler {
	os.MkdirAll(uploadDir, 0o755)
	return &DatasetHandler{
		session:     sess,
		uploadDir:   uploadDir,
		maxUploadMB: maxUploadMB,
	}
}

// Upload handles multipart CSV upload and loads it into the session
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.ParseMultipartForm(h.maxUploadMB << 20)

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "no file uploaded")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".csv" {
		response.BadRequest(w, "invalid file type. Allowed: .csv")
		return
	}

	// Unique name to avoid collisions between uploads
	destPath := filepath.Join(h.uploadDir, fmt.Sprintf("%s%s", uuid.New().String(), ext))

	dst, err := os.Create(destPath)
	if err != nil {
		response.InternalError(w, "failed to save file")
		return
	}

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(destPath)
		response.InternalError(w, "failed to save file")
		return
	}
	dst.Close()
	defer os.Remove(destPath)

	profile, err := h.session.Load(destPath)
	if err != nil {
		response.BadRequest(w, loadErrorMessage(err))
		return
	}

	response.OK(w, map[string]any{
		"original_name": header.Filename,
		"profile":       profile,
	})
}

// LoadRequest is the body for loading a dataset from a server-side path
type LoadRequest struct {
	Path string `json:"path" validate:"required"`
}

// Load reads a dataset from a path on the server
func (h *DatasetHandler) Load(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	profile, err := h.session.Load(req.Path)
	if err != nil {
		if errors.Is(err, dataset.ErrNotFound) {
			response.NotFound(w, loadErrorMessage(err))
			return
		}
		response.BadRequest(w, loadErrorMessage(err))
		return
	}

	response.OK(w, map[string]any{
		"path":    req.Path,
		"profile": profile,
	})
}

// Preview returns the head rows, descriptive statistics and the per-column
// type/null table of the loaded dataset
func (h *DatasetHandler) Preview(w http.ResponseWriter, r *http.Request) {
	profile := h.session.Profile()
	if profile == nil {
		response.Conflict(w, "please load a dataset first")
		return
	}

	response.OK(w, map[string]any{
		"profile":    profile,
		"head":       h.session.Head(previewRows),
		"statistics": h.session.Describe(),
	})
}

// Clear drops the loaded dataset and chat transcript
func (h *DatasetHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.session.Clear()
	response.NoContent(w)
}

func loadErrorMessage(err error) string {
	var parseErr *dataset.ParseError
	switch {
	case errors.Is(err, dataset.ErrNotFound):
		return err.Error()
	case errors.As(err, &parseErr):
		return parseErr.Error()
	default:
		return fmt.Sprintf("failed to load dataset: %v", err)
	}
}
