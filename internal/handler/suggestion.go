package handler

import (
	"log/slog"
	"net/http"

	"starc/internal/domain/services"
	"starc/internal/httputil"
)

// SuggestionHandler handles the accept/reject review endpoints
type SuggestionHandler struct {
	suggestions services.SuggestionService
	logger      *slog.Logger
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(suggestions services.SuggestionService, logger *slog.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		suggestions: suggestions,
		logger:      logger,
	}
}

// ReviewResponse confirms a review action and reports the new word count
type ReviewResponse struct {
	Message   string `json:"message"`
	WordCount *int   `json:"word_count,omitempty"`
}

// ListSuggestions returns the pending suggestions of a document
// GET /fix/{doc_id}
func (h *SuggestionHandler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "doc_id")
	if !ok {
		return
	}

	suggestions, err := h.suggestions.ListSuggestions(r.Context(), httputil.GetUserID(r), docID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, suggestions)
}

// AcceptSuggestion adopts one rewrite
// PUT /fix/{doc_id}/{sentence_id}
func (h *SuggestionHandler) AcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "doc_id")
	if !ok {
		return
	}
	sentenceID, ok := pathID(w, r, "sentence_id")
	if !ok {
		return
	}

	doc, err := h.suggestions.AcceptSuggestion(r.Context(), httputil.GetUserID(r), docID, sentenceID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ReviewResponse{
		Message:   "sentence and document updated successfully",
		WordCount: &doc.WordCount,
	})
}

// RejectSuggestion discards one rewrite
// DELETE /fix/{doc_id}/{sentence_id}
func (h *SuggestionHandler) RejectSuggestion(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "doc_id")
	if !ok {
		return
	}
	sentenceID, ok := pathID(w, r, "sentence_id")
	if !ok {
		return
	}

	if err := h.suggestions.RejectSuggestion(r.Context(), httputil.GetUserID(r), docID, sentenceID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, "sentence reset to original text successfully")
}

// AcceptAll adopts every pending rewrite
// PUT /fix/{doc_id}/all
func (h *SuggestionHandler) AcceptAll(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "doc_id")
	if !ok {
		return
	}

	doc, err := h.suggestions.AcceptAll(r.Context(), httputil.GetUserID(r), docID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ReviewResponse{
		Message:   "all suggestions accepted successfully",
		WordCount: &doc.WordCount,
	})
}

// RejectAll discards every pending rewrite
// DELETE /fix/{doc_id}/all
func (h *SuggestionHandler) RejectAll(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "doc_id")
	if !ok {
		return
	}

	if err := h.suggestions.RejectAll(r.Context(), httputil.GetUserID(r), docID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, "all suggestions deleted successfully")
}
