package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"starc/internal/domain"
	"starc/internal/domain/repositories"
	"starc/internal/domain/services"
)

// Seeder loads fixtures through the service layer
type Seeder struct {
	accounts services.AccountService
	docs     services.DocumentService
	tasks    services.TaskService
	users    repositories.UserRepository
	logger   *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(
	accounts services.AccountService,
	docs services.DocumentService,
	tasks services.TaskService,
	users repositories.UserRepository,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		accounts: accounts,
		docs:     docs,
		tasks:    tasks,
		users:    users,
		logger:   logger,
	}
}

// Summary counts what a seed run created
type Summary struct {
	Users     int
	Documents int
	Tasks     int
}

// Seed creates every fixture user with their documents and tasks.
// Users that already exist are skipped along with their data.
func (s *Seeder) Seed(ctx context.Context, fixtures *Fixtures) (*Summary, error) {
	summary := &Summary{}

	for _, uf := range fixtures.Users {
		user, err := s.accounts.Register(ctx, &services.RegisterRequest{
			Username: uf.Username,
			Email:    uf.Email,
			Password: uf.Password,
		})
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				if _, lookupErr := s.users.GetByUsername(ctx, uf.Username); lookupErr == nil {
					s.logger.Info("user exists, skipping", "username", uf.Username)
					continue
				}
			}
			return summary, fmt.Errorf("register %s: %w", uf.Username, err)
		}
		summary.Users++

		for _, df := range uf.Documents {
			doc, err := s.docs.CreateDocument(ctx, &services.CreateDocumentRequest{
				UserID: user.ID,
				Title:  df.Title,
				Text:   df.Text,
			})
			if err != nil {
				return summary, fmt.Errorf("create document %q: %w", df.Title, err)
			}
			summary.Documents++
			s.logger.Info("document seeded", "username", user.Username, "document_id", doc.ID, "word_count", doc.WordCount)
		}

		n, err := s.seedTasks(ctx, user.ID, nil, uf.Tasks)
		summary.Tasks += n
		if err != nil {
			return summary, err
		}
	}

	return summary, nil
}

func (s *Seeder) seedTasks(ctx context.Context, userID int64, parentID *int64, fixtures []TaskFixture) (int, error) {
	created := 0
	for _, tf := range fixtures {
		task, err := s.tasks.CreateTask(ctx, userID, &services.CreateTaskRequest{
			Content:  tf.Content,
			ParentID: parentID,
		})
		if err != nil {
			return created, fmt.Errorf("create task %q: %w", tf.Content, err)
		}
		created++

		if tf.Completed {
			done := true
			if _, err := s.tasks.UpdateTask(ctx, userID, task.ID, &services.UpdateTaskRequest{IsCompleted: &done}); err != nil {
				return created, fmt.Errorf("complete task %q: %w", tf.Content, err)
			}
		}

		n, err := s.seedTasks(ctx, userID, &task.ID, tf.SubItems)
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

var _ services.Rewriter = (*FixtureRewriter)(nil)
