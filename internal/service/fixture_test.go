package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"starc/internal/domain/models"
	"starc/internal/domain/services"
	svcauth "starc/internal/service/auth"
)

// fixture wires every service over one in-memory store
type fixture struct {
	store       *store
	tx          *fakeTx
	scorer      *fakeScorer
	rewriter    *fakeRewriter
	documents   services.DocumentService
	suggestions services.SuggestionService
	search      services.SearchService
	tasks       services.TaskService
}

func newFixture() *fixture {
	st := newStore()
	tx := &fakeTx{}
	scorer := &fakeScorer{scores: models.Scores{Score: 50, Optimism: 60, Forecast: 70, Confidence: 80}}
	rewriter := &fakeRewriter{}
	analyzer := NewTextAnalyzer()

	docRepo := fakeDocRepo{st}
	chunkRepo := fakeChunkRepo{st}
	sentenceRepo := fakeSentenceRepo{st}
	taskRepo := fakeTaskRepo{st}
	authorizer := svcauth.NewOwnerBasedAuthorizer(docRepo, taskRepo)

	return &fixture{
		store:    st,
		tx:       tx,
		scorer:   scorer,
		rewriter: rewriter,
		documents: NewDocumentService(docRepo, chunkRepo, sentenceRepo, fakeScoreRepo{st},
			tx, analyzer, scorer, rewriter, testLogger()),
		suggestions: NewSuggestionService(docRepo, chunkRepo, sentenceRepo, tx, authorizer, analyzer, testLogger()),
		search:      NewSearchService(docRepo),
		tasks:       NewTaskService(taskRepo, tx, authorizer, testLogger()),
	}
}

func (f *fixture) createDocument(t *testing.T, userID int64, title, text string) *models.Document {
	t.Helper()
	doc, err := f.documents.CreateDocument(context.Background(), &services.CreateDocumentRequest{
		UserID: userID,
		Title:  title,
		Text:   text,
	})
	require.NoError(t, err)
	return doc
}

func (f *fixture) chunkOf(t *testing.T, documentID int64) *models.TextChunk {
	t.Helper()
	chunk, err := fakeChunkRepo{f.store}.GetByDocument(context.Background(), documentID)
	require.NoError(t, err)
	return chunk
}
