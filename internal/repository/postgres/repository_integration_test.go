//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starc/internal/domain"
	"starc/internal/domain/models"
	"starc/internal/domain/repositories"
	"starc/internal/repository/postgres"
	"starc/internal/testhelpers"
)

// repoTestContext holds all repositories bound to the shared container.
type repoTestContext struct {
	t         *testing.T
	db        *testhelpers.TestDB
	users     repositories.UserRepository
	revoked   repositories.RevokedTokenRepository
	docs      repositories.DocumentRepository
	chunks    repositories.TextChunkRepository
	sentences repositories.SentenceRepository
	scores    repositories.ScoreRepository
	tasks     repositories.TaskRepository
	txManager repositories.TransactionManager
}

func setupRepoTest(t *testing.T) *repoTestContext {
	t.Helper()

	db := testhelpers.GetTestDB(t)
	db.Truncate(t, db.Tables.RevokedTokens, db.Tables.Users)

	cfg := db.RepoConfig()
	return &repoTestContext{
		t:         t,
		db:        db,
		users:     postgres.NewUserRepository(cfg),
		revoked:   postgres.NewRevokedTokenRepository(cfg),
		docs:      postgres.NewDocumentRepository(cfg),
		chunks:    postgres.NewTextChunkRepository(cfg),
		sentences: postgres.NewSentenceRepository(cfg),
		scores:    postgres.NewScoreRepository(cfg),
		tasks:     postgres.NewTaskRepository(cfg),
		txManager: postgres.NewTransactionManager(db.Pool, cfg.Logger),
	}
}

func (tc *repoTestContext) createUser(username string) *models.User {
	tc.t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(tc.t, tc.users.Create(context.Background(), user))
	return user
}

func (tc *repoTestContext) createDocument(ownerID int64, sentences ...string) (*models.Document, *models.TextChunk, []models.Sentence) {
	tc.t.Helper()
	ctx := context.Background()

	doc := &models.Document{Title: "Doc", OwnerID: ownerID}
	require.NoError(tc.t, tc.docs.Create(ctx, doc))

	chunk := &models.TextChunk{DocumentID: doc.ID, InputText: "in", RewrittenText: "out"}
	require.NoError(tc.t, tc.chunks.Create(ctx, chunk))

	rows := make([]models.Sentence, len(sentences))
	for i, s := range sentences {
		rows[i] = models.Sentence{OriginalText: s, RewrittenText: s + " better"}
	}
	require.NoError(tc.t, tc.sentences.CreateChain(ctx, chunk.ID, rows))
	return doc, chunk, rows
}

func TestUserRepository_CreateAndConflicts(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	alice := tc.createUser("alice")
	assert.NotZero(t, alice.ID)

	got, err := tc.users.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	err = tc.users.Create(ctx, &models.User{Username: "alice", Email: "other@example.com"})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "username", conflict.Field)

	err = tc.users.Create(ctx, &models.User{Username: "alice2", Email: "Alice@Example.com"})
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "email", conflict.Field)

	_, err = tc.users.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_GetOrCreateExternal(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	first, err := tc.users.GetOrCreateExternal(ctx, "sub-123", "")
	require.NoError(t, err)
	assert.Equal(t, "ext:sub-123", first.Username)

	second, err := tc.users.GetOrCreateExternal(ctx, "sub-123", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// Empty emails do not collide across external users
	other, err := tc.users.GetOrCreateExternal(ctx, "sub-456", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestRevokedTokenRepository(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	require.NoError(t, tc.revoked.Add(ctx, "jti-1"))
	require.NoError(t, tc.revoked.Add(ctx, "jti-1"))

	revoked, err := tc.revoked.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = tc.revoked.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	purged, err := tc.revoked.PurgeBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestDocumentRepository_OwnershipScoping(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	alice := tc.createUser("alice")
	bob := tc.createUser("bob")
	doc, _, _ := tc.createDocument(alice.ID, "One.")

	_, err := tc.docs.GetByID(ctx, doc.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = tc.docs.Delete(ctx, doc.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, tc.docs.UpdateTitle(ctx, doc.ID, "Renamed"))
	require.NoError(t, tc.docs.UpdateWordCount(ctx, doc.ID, 42))

	got, err := tc.docs.GetByID(ctx, doc.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, 42, got.WordCount)

	list, err := tc.docs.ListByOwner(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDocumentRepository_DeleteCascades(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	alice := tc.createUser("alice")
	doc, chunk, _ := tc.createDocument(alice.ID, "One.", "Two.")
	_, err := tc.scores.Save(ctx, chunk.ID, models.ScoreKindInitial, models.Scores{Score: 1})
	require.NoError(t, err)

	require.NoError(t, tc.docs.Delete(ctx, doc.ID, alice.ID))

	_, err = tc.chunks.GetByDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sentences, err := tc.sentences.ListByChunk(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Empty(t, sentences)

	_, err = tc.scores.Get(ctx, chunk.ID, models.ScoreKindInitial)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSentenceRepository_ChainAndBulkResolution(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	alice := tc.createUser("alice")
	_, chunk, rows := tc.createDocument(alice.ID, "One.", "Two.", "Three.")

	assert.Nil(t, rows[0].PrecedingSentenceID)
	require.NotNil(t, rows[1].PrecedingSentenceID)
	assert.Equal(t, rows[0].ID, *rows[1].PrecedingSentenceID)
	assert.Equal(t, rows[1].ID, *rows[2].PrecedingSentenceID)

	// Resolve one by hand, then accept the rest in bulk
	first := rows[0]
	require.True(t, first.Reject())
	require.NoError(t, tc.sentences.Update(ctx, &first))

	pending, err := tc.sentences.ListPending(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	accepted, err := tc.sentences.AcceptAll(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), accepted)

	all, err := tc.sentences.ListByChunk(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, "One.", all[0].OriginalText)
	assert.Equal(t, "Two. better", all[1].OriginalText)

	rejected, err := tc.sentences.RejectAll(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Zero(t, rejected)

	_, err = tc.sentences.GetByID(ctx, rows[0].ID, chunk.ID+1000)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScoreRepository_SaveReplaces(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	alice := tc.createUser("alice")
	_, chunk, _ := tc.createDocument(alice.ID, "One.")

	_, err := tc.scores.Get(ctx, chunk.ID, models.ScoreKindFinal)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = tc.scores.Save(ctx, chunk.ID, models.ScoreKindFinal, models.Scores{Score: 10, Optimism: 20, Forecast: 30, Confidence: 40})
	require.NoError(t, err)
	_, err = tc.scores.Save(ctx, chunk.ID, models.ScoreKindFinal, models.Scores{Score: 11, Optimism: 21, Forecast: 31, Confidence: 41})
	require.NoError(t, err)

	got, err := tc.scores.Get(ctx, chunk.ID, models.ScoreKindFinal)
	require.NoError(t, err)
	assert.Equal(t, models.Scores{Score: 11, Optimism: 21, Forecast: 31, Confidence: 41}, got.Scores)

	require.NoError(t, tc.scores.Delete(ctx, chunk.ID, models.ScoreKindFinal))
	_, err = tc.scores.Get(ctx, chunk.ID, models.ScoreKindFinal)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaskRepository_SubtreeCascade(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	alice := tc.createUser("alice")
	root := &models.Task{OwnerID: alice.ID, Content: "root"}
	require.NoError(t, tc.tasks.Create(ctx, root))
	child := &models.Task{OwnerID: alice.ID, Content: "child", ParentID: &root.ID}
	require.NoError(t, tc.tasks.Create(ctx, child))
	grandchild := &models.Task{OwnerID: alice.ID, Content: "grandchild", ParentID: &child.ID}
	require.NoError(t, tc.tasks.Create(ctx, grandchild))

	missing := int64(999999)
	err := tc.tasks.Create(ctx, &models.Task{OwnerID: alice.ID, Content: "orphan", ParentID: &missing})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, tc.tasks.Delete(ctx, root.ID, alice.ID))

	tasks, err := tc.tasks.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTransactionManager_RollsBack(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	alice := tc.createUser("alice")
	boom := errors.New("boom")

	err := tc.txManager.ExecTx(ctx, func(ctx context.Context) error {
		doc := &models.Document{Title: "Draft", OwnerID: alice.ID}
		if err := tc.docs.Create(ctx, doc); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	docs, err := tc.docs.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
