package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"starc/internal/domain"
	"starc/internal/domain/models"
	"starc/internal/domain/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// store backs every fake repository so cascades can be modelled
type store struct {
	nextID    int64
	users     map[int64]*models.User
	revoked   map[string]time.Time
	docs      map[int64]*models.Document
	chunks    map[int64]*models.TextChunk
	sentences map[int64]*models.Sentence
	scores    map[models.ScoreKind]map[int64]*models.ScoreSnapshot
	tasks     map[int64]*models.Task
}

func newStore() *store {
	return &store{
		users:     map[int64]*models.User{},
		revoked:   map[string]time.Time{},
		docs:      map[int64]*models.Document{},
		chunks:    map[int64]*models.TextChunk{},
		sentences: map[int64]*models.Sentence{},
		scores: map[models.ScoreKind]map[int64]*models.ScoreSnapshot{
			models.ScoreKindInitial: {},
			models.ScoreKindFinal:   {},
		},
		tasks: map[int64]*models.Task{},
	}
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, domain.ErrNotFound)
}

// fakeTx runs fn directly; the fakes have no rollback
type fakeTx struct{ calls int }

func (f *fakeTx) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	f.calls++
	return fn(ctx)
}

// userRepo

type fakeUserRepo struct{ s *store }

func (r fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return &domain.ConflictError{Message: "username already exists", ResourceType: "user", Field: "username"}
		}
		if strings.EqualFold(u.Email, user.Email) {
			return &domain.ConflictError{Message: "email already registered", ResourceType: "user", Field: "email"}
		}
	}
	user.ID = r.s.id()
	user.CreatedAt = time.Now()
	copied := *user
	r.s.users[user.ID] = &copied
	return nil
}

func (r fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := r.s.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, notFound("user", id)
}

func (r fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user '%s': %w", username, domain.ErrNotFound)
}

func (r fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user '%s': %w", email, domain.ErrNotFound)
}

func (r fakeUserRepo) GetOrCreateExternal(ctx context.Context, externalID, email string) (*models.User, error) {
	for _, u := range r.s.users {
		if u.ExternalID != nil && *u.ExternalID == externalID {
			return u, nil
		}
	}
	sub := externalID
	user := &models.User{Username: "ext:" + externalID, Email: email, ExternalID: &sub}
	return user, r.Create(ctx, user)
}

type fakeRevokedRepo struct{ s *store }

func (r fakeRevokedRepo) Add(_ context.Context, jti string) error {
	if _, ok := r.s.revoked[jti]; !ok {
		r.s.revoked[jti] = time.Now()
	}
	return nil
}

func (r fakeRevokedRepo) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := r.s.revoked[jti]
	return ok, nil
}

func (r fakeRevokedRepo) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for jti, at := range r.s.revoked {
		if at.Before(cutoff) {
			delete(r.s.revoked, jti)
			n++
		}
	}
	return n, nil
}

// document repos

type fakeDocRepo struct{ s *store }

func (r fakeDocRepo) Create(_ context.Context, doc *models.Document) error {
	doc.ID = r.s.id()
	doc.CreatedAt = time.Now().Add(time.Duration(doc.ID) * time.Millisecond)
	copied := *doc
	r.s.docs[doc.ID] = &copied
	return nil
}

func (r fakeDocRepo) GetByID(_ context.Context, id, ownerID int64) (*models.Document, error) {
	d, ok := r.s.docs[id]
	if !ok || d.OwnerID != ownerID {
		return nil, notFound("document", id)
	}
	copied := *d
	return &copied, nil
}

func (r fakeDocRepo) ListByOwner(_ context.Context, ownerID int64) ([]models.Document, error) {
	docs := []models.Document{}
	for _, d := range r.s.docs {
		if d.OwnerID == ownerID {
			docs = append(docs, *d)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID > docs[j].ID })
	return docs, nil
}

func (r fakeDocRepo) UpdateTitle(_ context.Context, id int64, title string) error {
	d, ok := r.s.docs[id]
	if !ok {
		return notFound("document", id)
	}
	d.Title = title
	return nil
}

func (r fakeDocRepo) UpdateWordCount(_ context.Context, id int64, wordCount int) error {
	d, ok := r.s.docs[id]
	if !ok {
		return notFound("document", id)
	}
	d.WordCount = wordCount
	return nil
}

func (r fakeDocRepo) Delete(_ context.Context, id, ownerID int64) error {
	d, ok := r.s.docs[id]
	if !ok || d.OwnerID != ownerID {
		return notFound("document", id)
	}
	delete(r.s.docs, id)
	for cid, c := range r.s.chunks {
		if c.DocumentID == id {
			delete(r.s.chunks, cid)
			for sid, sen := range r.s.sentences {
				if sen.ChunkID == cid {
					delete(r.s.sentences, sid)
				}
			}
			for _, byChunk := range r.s.scores {
				delete(byChunk, cid)
			}
		}
	}
	return nil
}

type fakeChunkRepo struct{ s *store }

func (r fakeChunkRepo) Create(_ context.Context, chunk *models.TextChunk) error {
	chunk.ID = r.s.id()
	copied := *chunk
	r.s.chunks[chunk.ID] = &copied
	return nil
}

func (r fakeChunkRepo) GetByDocument(_ context.Context, documentID int64) (*models.TextChunk, error) {
	var found *models.TextChunk
	for _, c := range r.s.chunks {
		if c.DocumentID == documentID && (found == nil || c.ID < found.ID) {
			found = c
		}
	}
	if found == nil {
		return nil, notFound("text chunk for document", documentID)
	}
	copied := *found
	return &copied, nil
}

func (r fakeChunkRepo) UpdateInputText(_ context.Context, id int64, inputText string) error {
	c, ok := r.s.chunks[id]
	if !ok {
		return notFound("text chunk", id)
	}
	c.InputText = inputText
	return nil
}

func (r fakeChunkRepo) UpdateTexts(_ context.Context, chunk *models.TextChunk) error {
	c, ok := r.s.chunks[chunk.ID]
	if !ok {
		return notFound("text chunk", chunk.ID)
	}
	c.InputText = chunk.InputText
	c.RewrittenText = chunk.RewrittenText
	return nil
}

type fakeSentenceRepo struct{ s *store }

func (r fakeSentenceRepo) CreateChain(_ context.Context, chunkID int64, sentences []models.Sentence) error {
	var previous *int64
	for i := range sentences {
		sentences[i].ID = r.s.id()
		sentences[i].ChunkID = chunkID
		sentences[i].PrecedingSentenceID = previous
		copied := sentences[i]
		r.s.sentences[copied.ID] = &copied
		id := copied.ID
		previous = &id
	}
	return nil
}

func (r fakeSentenceRepo) GetByID(_ context.Context, id, chunkID int64) (*models.Sentence, error) {
	sen, ok := r.s.sentences[id]
	if !ok || sen.ChunkID != chunkID {
		return nil, notFound("sentence", id)
	}
	copied := *sen
	return &copied, nil
}

func (r fakeSentenceRepo) list(chunkID int64, keep func(*models.Sentence) bool) []models.Sentence {
	out := []models.Sentence{}
	for _, sen := range r.s.sentences {
		if sen.ChunkID == chunkID && keep(sen) {
			out = append(out, *sen)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r fakeSentenceRepo) ListByChunk(_ context.Context, chunkID int64) ([]models.Sentence, error) {
	return r.list(chunkID, func(*models.Sentence) bool { return true }), nil
}

func (r fakeSentenceRepo) ListPending(_ context.Context, chunkID int64) ([]models.Sentence, error) {
	return r.list(chunkID, (*models.Sentence).IsPending), nil
}

func (r fakeSentenceRepo) Update(_ context.Context, sentence *models.Sentence) error {
	sen, ok := r.s.sentences[sentence.ID]
	if !ok || sen.ChunkID != sentence.ChunkID {
		return notFound("sentence", sentence.ID)
	}
	sen.OriginalText = sentence.OriginalText
	sen.RewrittenText = sentence.RewrittenText
	return nil
}

func (r fakeSentenceRepo) AcceptAll(_ context.Context, chunkID int64) (int64, error) {
	var n int64
	for _, sen := range r.s.sentences {
		if sen.ChunkID == chunkID && sen.Accept() {
			n++
		}
	}
	return n, nil
}

func (r fakeSentenceRepo) RejectAll(_ context.Context, chunkID int64) (int64, error) {
	var n int64
	for _, sen := range r.s.sentences {
		if sen.ChunkID == chunkID && sen.Reject() {
			n++
		}
	}
	return n, nil
}

func (r fakeSentenceRepo) DeleteByChunk(_ context.Context, chunkID int64) error {
	for id, sen := range r.s.sentences {
		if sen.ChunkID == chunkID {
			delete(r.s.sentences, id)
		}
	}
	return nil
}

type fakeScoreRepo struct{ s *store }

func (r fakeScoreRepo) Save(_ context.Context, chunkID int64, kind models.ScoreKind, scores models.Scores) (*models.ScoreSnapshot, error) {
	snapshot := &models.ScoreSnapshot{ID: r.s.id(), ChunkID: chunkID, Kind: kind, CreatedAt: time.Now(), Scores: scores}
	r.s.scores[kind][chunkID] = snapshot
	copied := *snapshot
	return &copied, nil
}

func (r fakeScoreRepo) Get(_ context.Context, chunkID int64, kind models.ScoreKind) (*models.ScoreSnapshot, error) {
	snapshot, ok := r.s.scores[kind][chunkID]
	if !ok {
		return nil, notFound(string(kind)+" scores for chunk", chunkID)
	}
	copied := *snapshot
	return &copied, nil
}

func (r fakeScoreRepo) Delete(_ context.Context, chunkID int64, kind models.ScoreKind) error {
	delete(r.s.scores[kind], chunkID)
	return nil
}

// task repo

type fakeTaskRepo struct{ s *store }

func (r fakeTaskRepo) Create(_ context.Context, task *models.Task) error {
	if task.ParentID != nil {
		if _, ok := r.s.tasks[*task.ParentID]; !ok {
			return notFound("parent task", *task.ParentID)
		}
	}
	task.ID = r.s.id()
	task.CreatedAt = time.Now()
	copied := *task
	r.s.tasks[task.ID] = &copied
	return nil
}

func (r fakeTaskRepo) GetByID(_ context.Context, id, ownerID int64) (*models.Task, error) {
	t, ok := r.s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, notFound("task", id)
	}
	copied := *t
	return &copied, nil
}

func (r fakeTaskRepo) ListByOwner(_ context.Context, ownerID int64) ([]models.Task, error) {
	tasks := []models.Task{}
	for _, t := range r.s.tasks {
		if t.OwnerID == ownerID {
			tasks = append(tasks, *t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (r fakeTaskRepo) Update(_ context.Context, task *models.Task) error {
	t, ok := r.s.tasks[task.ID]
	if !ok || t.OwnerID != task.OwnerID {
		return notFound("task", task.ID)
	}
	copied := *task
	r.s.tasks[task.ID] = &copied
	return nil
}

func (r fakeTaskRepo) Delete(_ context.Context, id, ownerID int64) error {
	t, ok := r.s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return notFound("task", id)
	}
	var drop func(int64)
	drop = func(id int64) {
		delete(r.s.tasks, id)
		for cid, c := range r.s.tasks {
			if c.ParentID != nil && *c.ParentID == id {
				drop(cid)
			}
		}
	}
	drop(id)
	return nil
}

// upstream fakes

type fakeScorer struct {
	scores models.Scores
	err    error
	texts  []string
}

func (f *fakeScorer) Score(_ context.Context, text string) (*models.Scores, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	s := f.scores
	return &s, nil
}

// fakeRewriter prefixes the text unless a fixed answer is configured
type fakeRewriter struct {
	answers map[string]string
	err     error
	calls   int
}

func (f *fakeRewriter) Rewrite(_ context.Context, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if answer, ok := f.answers[text]; ok {
		return answer, nil
	}
	return "Better: " + text, nil
}
