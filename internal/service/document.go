package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"starc/internal/config"
	"starc/internal/domain"
	"starc/internal/domain/models"
	"starc/internal/domain/repositories"
	"starc/internal/domain/services"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo      repositories.DocumentRepository
	chunkRepo    repositories.TextChunkRepository
	sentenceRepo repositories.SentenceRepository
	scoreRepo    repositories.ScoreRepository
	txManager    repositories.TransactionManager
	analyzer     services.TextAnalyzer
	scorer       services.Scorer
	rewriter     services.Rewriter
	logger       *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo repositories.DocumentRepository,
	chunkRepo repositories.TextChunkRepository,
	sentenceRepo repositories.SentenceRepository,
	scoreRepo repositories.ScoreRepository,
	txManager repositories.TransactionManager,
	analyzer services.TextAnalyzer,
	scorer services.Scorer,
	rewriter services.Rewriter,
	logger *slog.Logger,
) services.DocumentService {
	return &documentService{
		docRepo:      docRepo,
		chunkRepo:    chunkRepo,
		sentenceRepo: sentenceRepo,
		scoreRepo:    scoreRepo,
		txManager:    txManager,
		analyzer:     analyzer,
		scorer:       scorer,
		rewriter:     rewriter,
		logger:       logger,
	}
}

// ingestion is the result of splitting, rewriting and scoring a text.
// It is computed before any transaction opens so upstream latency never
// holds a database connection.
type ingestion struct {
	sentences []models.Sentence
	original  string
	rewritten string
	scores    *models.Scores
	wordCount int
}

func (s *documentService) ingest(ctx context.Context, text string) (*ingestion, error) {
	parts := s.analyzer.SplitSentences(text)
	if len(parts) == 0 {
		return nil, &domain.ValidationError{Message: "text must contain at least one sentence"}
	}
	if len(parts) > config.MaxSentencesPerDocument {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("text has %d sentences; at most %d are allowed", len(parts), config.MaxSentencesPerDocument),
		}
	}

	sentences := make([]models.Sentence, len(parts))
	for i, part := range parts {
		rewritten, err := s.rewriter.Rewrite(ctx, part)
		if err != nil {
			return nil, fmt.Errorf("rewrite sentence %d: %w", i+1, err)
		}
		rewritten = strings.TrimSpace(rewritten)
		if rewritten == "" {
			rewritten = part
		}
		sentences[i] = models.Sentence{OriginalText: part, RewrittenText: rewritten}
	}

	scores, err := s.scorer.Score(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("score text: %w", err)
	}

	original := s.analyzer.JoinOriginal(chainSentences(sentences))
	return &ingestion{
		sentences: sentences,
		original:  original,
		rewritten: s.analyzer.JoinRewritten(chainSentences(sentences)),
		scores:    scores,
		wordCount: s.analyzer.CountWords(original),
	}, nil
}

// chainSentences gives unsaved sentences provisional ids linked in slice order
func chainSentences(sentences []models.Sentence) []models.Sentence {
	linked := make([]models.Sentence, len(sentences))
	for i, s := range sentences {
		s.ID = int64(i + 1)
		if i > 0 {
			prev := int64(i)
			s.PrecedingSentenceID = &prev
		}
		linked[i] = s
	}
	return linked
}

// CreateDocument splits, rewrites and scores the text, then stores the
// document, its chunk, the sentence chain and the initial score together
func (s *documentService) CreateDocument(ctx context.Context, req *services.CreateDocumentRequest) (*models.Document, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateDocumentInput(req.Title, req.Text); err != nil {
		return nil, err
	}

	in, err := s.ingest(ctx, req.Text)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		Title:     req.Title,
		OwnerID:   req.UserID,
		WordCount: in.wordCount,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.Create(txCtx, doc); err != nil {
			return err
		}

		chunk := &models.TextChunk{
			DocumentID:    doc.ID,
			InputText:     in.original,
			RewrittenText: in.rewritten,
		}
		if err := s.chunkRepo.Create(txCtx, chunk); err != nil {
			return err
		}

		if err := s.sentenceRepo.CreateChain(txCtx, chunk.ID, in.sentences); err != nil {
			return err
		}

		_, err := s.scoreRepo.Save(txCtx, chunk.ID, models.ScoreKindInitial, *in.scores)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"owner_id", doc.OwnerID,
		"sentences", len(in.sentences),
		"word_count", doc.WordCount,
	)

	return doc, nil
}

func validateDocumentInput(title, text string) error {
	if title == "" || strings.TrimSpace(text) == "" {
		return &domain.ValidationError{Message: "title and text are required"}
	}
	return validateTitle(title)
}

func validateTitle(title string) error {
	err := validation.Validate(title,
		validation.Required,
		validation.RuneLength(1, config.MaxDocumentTitleLength),
	)
	if err != nil {
		return fmt.Errorf("%w: title: %v", domain.ErrValidation, err)
	}
	return nil
}

// GetDocument returns the document with its accepted text in chain order
func (s *documentService) GetDocument(ctx context.Context, userID, documentID int64) (*models.DocumentDetails, error) {
	doc, err := s.getOwned(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, doc)
}

func (s *documentService) details(ctx context.Context, doc *models.Document) (*models.DocumentDetails, error) {
	details := &models.DocumentDetails{
		ID:        doc.ID,
		Title:     doc.Title,
		WordCount: doc.WordCount,
		CreatedAt: doc.CreatedAt,
	}

	chunk, err := s.chunkRepo.GetByDocument(ctx, doc.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return details, nil
		}
		return nil, err
	}

	sentences, err := s.sentenceRepo.ListByChunk(ctx, chunk.ID)
	if err != nil {
		return nil, err
	}

	details.SentencesCombined = s.analyzer.JoinOriginal(sentences)
	for i := range sentences {
		if sentences[i].IsPending() {
			details.PendingCount++
		}
	}
	return details, nil
}

// ListDocuments returns the caller's documents, newest first
func (s *documentService) ListDocuments(ctx context.Context, userID int64) ([]models.Document, error) {
	return s.docRepo.ListByOwner(ctx, userID)
}

// UpdateDocument renames the document and/or replaces its text.
// New text is ingested from scratch: the sentence chain and initial score
// are replaced and any final score is dropped.
func (s *documentService) UpdateDocument(ctx context.Context, userID, documentID int64, req *services.UpdateDocumentRequest) (*models.DocumentDetails, error) {
	doc, err := s.getOwned(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	if req.Title == nil && req.Text == nil {
		return nil, &domain.ValidationError{Message: "title or text is required"}
	}

	var title string
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
	}

	var in *ingestion
	if req.Text != nil {
		if strings.TrimSpace(*req.Text) == "" {
			return nil, &domain.ValidationError{Message: "text cannot be empty"}
		}
		if in, err = s.ingest(ctx, *req.Text); err != nil {
			return nil, err
		}
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if req.Title != nil {
			if err := s.docRepo.UpdateTitle(txCtx, doc.ID, title); err != nil {
				return err
			}
			doc.Title = title
		}
		if in != nil {
			if err := s.replaceText(txCtx, doc, in); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document updated",
		"id", doc.ID,
		"title_changed", req.Title != nil,
		"text_changed", in != nil,
	)

	return s.details(ctx, doc)
}

func (s *documentService) replaceText(ctx context.Context, doc *models.Document, in *ingestion) error {
	chunk, err := s.chunkRepo.GetByDocument(ctx, doc.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		chunk = &models.TextChunk{DocumentID: doc.ID, InputText: in.original, RewrittenText: in.rewritten}
		if err := s.chunkRepo.Create(ctx, chunk); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		chunk.InputText = in.original
		chunk.RewrittenText = in.rewritten
		if err := s.chunkRepo.UpdateTexts(ctx, chunk); err != nil {
			return err
		}
		if err := s.sentenceRepo.DeleteByChunk(ctx, chunk.ID); err != nil {
			return err
		}
	}

	if err := s.sentenceRepo.CreateChain(ctx, chunk.ID, in.sentences); err != nil {
		return err
	}
	if _, err := s.scoreRepo.Save(ctx, chunk.ID, models.ScoreKindInitial, *in.scores); err != nil {
		return err
	}
	if err := s.scoreRepo.Delete(ctx, chunk.ID, models.ScoreKindFinal); err != nil {
		return err
	}

	doc.WordCount = in.wordCount
	return s.docRepo.UpdateWordCount(ctx, doc.ID, in.wordCount)
}

// DeleteDocument deletes a document; chunk, sentences and scores cascade
func (s *documentService) DeleteDocument(ctx context.Context, userID, documentID int64) error {
	if err := s.docRepo.Delete(ctx, documentID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.NotFoundError{Message: "document not found or access denied"}
		}
		return err
	}

	s.logger.Info("document deleted", "id", documentID, "owner_id", userID)
	return nil
}

// GetScores returns the initial snapshot followed by the final one, if taken
func (s *documentService) GetScores(ctx context.Context, userID, documentID int64) ([]models.ScoreSnapshot, error) {
	chunk, err := s.getOwnedChunk(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	snapshots := []models.ScoreSnapshot{}
	for _, kind := range []models.ScoreKind{models.ScoreKindInitial, models.ScoreKindFinal} {
		snapshot, err := s.scoreRepo.Get(ctx, chunk.ID, kind)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		snapshots = append(snapshots, *snapshot)
	}
	return snapshots, nil
}

// SnapshotFinalScore scores the accepted text and stores it as the final score
func (s *documentService) SnapshotFinalScore(ctx context.Context, userID, documentID int64) (*models.ScoreSnapshot, error) {
	chunk, err := s.getOwnedChunk(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	pending, err := s.sentenceRepo.ListPending(ctx, chunk.ID)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("%d suggestions are still pending; accept or reject them first", len(pending)),
		}
	}

	scores, err := s.scorer.Score(ctx, chunk.InputText)
	if err != nil {
		return nil, fmt.Errorf("score text: %w", err)
	}

	snapshot, err := s.scoreRepo.Save(ctx, chunk.ID, models.ScoreKindFinal, *scores)
	if err != nil {
		return nil, err
	}

	s.logger.Info("final score recorded", "document_id", documentID, "score", snapshot.Score)
	return snapshot, nil
}

func (s *documentService) getOwned(ctx context.Context, userID, documentID int64) (*models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{Message: "document not found or access denied"}
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) getOwnedChunk(ctx context.Context, userID, documentID int64) (*models.TextChunk, error) {
	if _, err := s.getOwned(ctx, userID, documentID); err != nil {
		return nil, err
	}
	return loadChunk(ctx, s.chunkRepo, documentID)
}

// loadChunk collapses a missing chunk into a NotFoundError with a readable message
func loadChunk(ctx context.Context, chunkRepo repositories.TextChunkRepository, documentID int64) (*models.TextChunk, error) {
	chunk, err := chunkRepo.GetByDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{Message: "text chunk not found for the given document"}
		}
		return nil, err
	}
	return chunk, nil
}
