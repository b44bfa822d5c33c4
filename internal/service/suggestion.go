package service

import (
	"context"
	"errors"
	"log/slog"

	"starc/internal/domain"
	"starc/internal/domain/models"
	"starc/internal/domain/repositories"
	"starc/internal/domain/services"
)

// suggestionService implements the SuggestionService interface.
// Each operation checks ownership first and runs in one transaction.
type suggestionService struct {
	docRepo      repositories.DocumentRepository
	chunkRepo    repositories.TextChunkRepository
	sentenceRepo repositories.SentenceRepository
	txManager    repositories.TransactionManager
	authorizer   services.ResourceAuthorizer
	analyzer     services.TextAnalyzer
	logger       *slog.Logger
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(
	docRepo repositories.DocumentRepository,
	chunkRepo repositories.TextChunkRepository,
	sentenceRepo repositories.SentenceRepository,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	analyzer services.TextAnalyzer,
	logger *slog.Logger,
) services.SuggestionService {
	return &suggestionService{
		docRepo:      docRepo,
		chunkRepo:    chunkRepo,
		sentenceRepo: sentenceRepo,
		txManager:    txManager,
		authorizer:   authorizer,
		analyzer:     analyzer,
		logger:       logger,
	}
}

// ListSuggestions returns the document's pending sentences ordered by id.
// No pending sentence is reported as not found rather than an empty list.
func (s *suggestionService) ListSuggestions(ctx context.Context, userID, documentID int64) ([]models.Suggestion, error) {
	if err := s.authorizer.CanAccessDocument(ctx, userID, documentID); err != nil {
		return nil, err
	}

	chunk, err := loadChunk(ctx, s.chunkRepo, documentID)
	if err != nil {
		return nil, err
	}

	pending, err := s.sentenceRepo.ListPending(ctx, chunk.ID)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, &domain.NotFoundError{Message: "no rewritten sentences found for the given document"}
	}

	suggestions := make([]models.Suggestion, len(pending))
	for i, sentence := range pending {
		suggestions[i] = models.Suggestion{
			SentenceID:        sentence.ID,
			OriginalSentence:  sentence.OriginalText,
			RewrittenSentence: sentence.RewrittenText,
		}
	}
	return suggestions, nil
}

// AcceptSuggestion adopts one rewrite and recomputes the accepted text
func (s *suggestionService) AcceptSuggestion(ctx context.Context, userID, documentID, sentenceID int64) (*models.Document, error) {
	var doc *models.Document
	err := s.withChunk(ctx, userID, documentID, func(txCtx context.Context, chunk *models.TextChunk) error {
		sentence, err := s.loadSentence(txCtx, sentenceID, chunk.ID)
		if err != nil {
			return err
		}

		if sentence.Accept() {
			if err := s.sentenceRepo.Update(txCtx, sentence); err != nil {
				return err
			}
		}

		doc, err = s.recompute(txCtx, userID, documentID, chunk)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("suggestion accepted", "document_id", documentID, "sentence_id", sentenceID)
	return doc, nil
}

// RejectSuggestion discards one rewrite; accepted text is unchanged
func (s *suggestionService) RejectSuggestion(ctx context.Context, userID, documentID, sentenceID int64) error {
	err := s.withChunk(ctx, userID, documentID, func(txCtx context.Context, chunk *models.TextChunk) error {
		sentence, err := s.loadSentence(txCtx, sentenceID, chunk.ID)
		if err != nil {
			return err
		}

		if sentence.Reject() {
			return s.sentenceRepo.Update(txCtx, sentence)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("suggestion rejected", "document_id", documentID, "sentence_id", sentenceID)
	return nil
}

// AcceptAll adopts every rewrite and recomputes once
func (s *suggestionService) AcceptAll(ctx context.Context, userID, documentID int64) (*models.Document, error) {
	var doc *models.Document
	var accepted int64
	err := s.withChunk(ctx, userID, documentID, func(txCtx context.Context, chunk *models.TextChunk) error {
		var err error
		if accepted, err = s.sentenceRepo.AcceptAll(txCtx, chunk.ID); err != nil {
			return err
		}
		doc, err = s.recompute(txCtx, userID, documentID, chunk)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("all suggestions accepted", "document_id", documentID, "count", accepted)
	return doc, nil
}

// RejectAll discards every rewrite
func (s *suggestionService) RejectAll(ctx context.Context, userID, documentID int64) error {
	var rejected int64
	err := s.withChunk(ctx, userID, documentID, func(txCtx context.Context, chunk *models.TextChunk) error {
		var err error
		rejected, err = s.sentenceRepo.RejectAll(txCtx, chunk.ID)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("all suggestions rejected", "document_id", documentID, "count", rejected)
	return nil
}

// withChunk runs fn in a transaction after the ownership check and chunk lookup
func (s *suggestionService) withChunk(ctx context.Context, userID, documentID int64, fn func(context.Context, *models.TextChunk) error) error {
	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.authorizer.CanAccessDocument(txCtx, userID, documentID); err != nil {
			return err
		}

		chunk, err := loadChunk(txCtx, s.chunkRepo, documentID)
		if err != nil {
			return err
		}
		return fn(txCtx, chunk)
	})
}

func (s *suggestionService) loadSentence(ctx context.Context, sentenceID, chunkID int64) (*models.Sentence, error) {
	sentence, err := s.sentenceRepo.GetByID(ctx, sentenceID, chunkID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{Message: "sentence not found"}
		}
		return nil, err
	}
	return sentence, nil
}

// recompute rebuilds the chunk's accepted text from the sentence chain and
// stores the new word count on the document
func (s *suggestionService) recompute(ctx context.Context, userID, documentID int64, chunk *models.TextChunk) (*models.Document, error) {
	sentences, err := s.sentenceRepo.ListByChunk(ctx, chunk.ID)
	if err != nil {
		return nil, err
	}

	text := s.analyzer.JoinOriginal(sentences)
	if err := s.chunkRepo.UpdateInputText(ctx, chunk.ID, text); err != nil {
		return nil, err
	}
	chunk.InputText = text

	wordCount := s.analyzer.CountWords(text)
	if err := s.docRepo.UpdateWordCount(ctx, documentID, wordCount); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetByID(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
