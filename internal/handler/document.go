package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"starc/internal/domain/services"
	"starc/internal/httputil"
)

// responseGrace is the time left to write the response once ingestion ends
const responseGrace = 15 * time.Second

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService    services.DocumentService
	ingestTimeout time.Duration
	logger        *slog.Logger
}

// NewDocumentHandler creates a new document handler.
// ingestTimeout bounds create and text updates; zero leaves them unbounded.
func NewDocumentHandler(docService services.DocumentService, ingestTimeout time.Duration, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService:    docService,
		ingestTimeout: ingestTimeout,
		logger:        logger,
	}
}

// ingestContext bounds ingestion by ingestTimeout and moves the connection's
// write deadline past it, so the outcome always reaches the client
func (h *DocumentHandler) ingestContext(w http.ResponseWriter, r *http.Request) (context.Context, context.CancelFunc) {
	if h.ingestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}

	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Now().Add(h.ingestTimeout + responseGrace)); err != nil {
		h.logger.Debug("write deadline not extended", "error", err, "path", r.URL.Path)
	}
	return context.WithTimeout(r.Context(), h.ingestTimeout)
}

// CreateDocumentResponse is returned after ingestion
type CreateDocumentResponse struct {
	DocumentID int64     `json:"document_id"`
	Title      string    `json:"title"`
	WordCount  int       `json:"word_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateDocument ingests a new document
// POST /docs
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req services.CreateDocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.UserID = httputil.GetUserID(r)

	ctx, cancel := h.ingestContext(w, r)
	defer cancel()

	doc, err := h.docService.CreateDocument(ctx, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, CreateDocumentResponse{
		DocumentID: doc.ID,
		Title:      doc.Title,
		WordCount:  doc.WordCount,
		CreatedAt:  doc.CreatedAt,
	})
}

// ListDocuments returns the caller's documents
// GET /docs
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docService.ListDocuments(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// GetDocument retrieves a document with its current text
// GET /docs/{doc_id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "doc_id")
	if !ok {
		return
	}

	details, err := h.docService.GetDocument(r.Context(), httputil.GetUserID(r), docID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, details)
}

// UpdateDocument changes the title and/or text
// PUT /docs/{doc_id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "doc_id")
	if !ok {
		return
	}

	var req services.UpdateDocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := h.ingestContext(w, r)
	defer cancel()

	details, err := h.docService.UpdateDocument(ctx, httputil.GetUserID(r), docID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, details)
}

// DeleteDocument deletes a document and everything derived from it
// DELETE /docs/{doc_id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "doc_id")
	if !ok {
		return
	}

	if err := h.docService.DeleteDocument(r.Context(), httputil.GetUserID(r), docID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, "document deleted successfully")
}

// GetScores returns the stored score snapshots
// GET /docs/scores/{doc_id}
func (h *DocumentHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "doc_id")
	if !ok {
		return
	}

	scores, err := h.docService.GetScores(r.Context(), httputil.GetUserID(r), docID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, scores)
}

// SnapshotFinalScore scores the reviewed text
// POST /docs/{doc_id}/final-score
func (h *DocumentHandler) SnapshotFinalScore(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "doc_id")
	if !ok {
		return
	}

	snapshot, err := h.docService.SnapshotFinalScore(r.Context(), httputil.GetUserID(r), docID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, snapshot)
}
