package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// QuestionAnswerer is the query path: it always yields a displayable string,
// degrading internally on retrieval or generation failures.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question string, limit int) string
}

// ChatHandler exposes the question answering endpoint.
type ChatHandler struct {
	answerer QuestionAnswerer
}

func NewChatHandler(answerer QuestionAnswerer) *ChatHandler {
	return &ChatHandler{answerer: answerer}
}

type queryRequest struct {
	Query    string `json:"query"`
	NResults int    `json:"n_results"`
}

type queryResponse struct {
	Response string `json:"response"`
}

// QueryDocuments answers a question over the ingested documents. The query
// must be non-empty; n_results defaults to 5 and must be between 1 and 20
// when given.
func (h *ChatHandler) QueryDocuments(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "query must not be empty")
		return
	}
	if req.NResults < 0 || req.NResults > 20 {
		respondError(w, http.StatusBadRequest, "n_results must be between 1 and 20")
		return
	}

	answer := h.answerer.Answer(r.Context(), req.Query, req.NResults)
	respondJSON(w, http.StatusOK, queryResponse{Response: answer})
}
