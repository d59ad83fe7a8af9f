package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Rrens/datachat/internal/api/response"
	"github.com/Rrens/datachat/internal/session"
)

// InsightHandler handles AI analysis and chat endpoints
type InsightHandler struct {
	session *session.Session
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(sess *session.Session) *InsightHandler {
	return &InsightHandler{session: sess}
}

// AnalyzeRequest is the body for a dataset analysis. An empty query asks for
// a general analysis.
type AnalyzeRequest struct {
	Query string `json:"query"`
}

// Analyze runs an AI analysis of the loaded dataset
func (h *InsightHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	analysis := h.session.Analyze(r.Context(), req.Query)

	response.OK(w, map[string]string{
		"analysis": analysis,
	})
}

// ChatRequest is the body for one conversational turn
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// Chat sends a message about the dataset and returns the assistant reply
func (h *InsightHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	reply := h.session.Chat(r.Context(), req.Message)

	response.OK(w, map[string]any{
		"reply":   reply,
		"history": h.session.History(),
	})
}

// History returns the chat transcript
func (h *InsightHandler) History(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]any{
		"history": h.session.History(),
	})
}
