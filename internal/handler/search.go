package handler

import (
	"log/slog"
	"net/http"

	"starc/internal/domain/services"
	"starc/internal/httputil"
)

// SearchHandler handles title search
type SearchHandler struct {
	search services.SearchService
	logger *slog.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(search services.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		search: search,
		logger: logger,
	}
}

// Search matches the caller's document titles against ?q=
// GET /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.search.SearchTitles(r.Context(), httputil.GetUserID(r), r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	switch {
	case !results.HasDocuments:
		w.WriteHeader(http.StatusNoContent)
	case len(results.Results) == 0:
		httputil.RespondMessage(w, http.StatusOK, "no matching documents found")
	default:
		httputil.RespondJSON(w, http.StatusOK, results)
	}
}
