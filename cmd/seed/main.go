package main

import (
	"context"
	"flag"
	"log"
	"math/rand/v2"
	"os"

	"starc/internal/auth"
	"starc/internal/config"
	"starc/internal/repository/postgres"
	"starc/internal/seed"
	"starc/internal/service"
	svcauth "starc/internal/service/auth"
	"starc/internal/service/scoring"

	"github.com/joho/godotenv"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only apply migrations, don't seed data")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: cannot run --drop-tables in production environment")
	}

	logger, closeLog, err := config.NewLogger(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		logger.Info("dropping all tables", "prefix", cfg.TablePrefix)
		if err := postgres.DropAll(pool, tables, logger); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	if err := postgres.RunMigrations(pool, tables, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if *schemaOnly {
		logger.Info("schema ready (schema-only mode)")
		return
	}

	fixtures, err := seed.LoadFixtures()
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	revokedRepo := postgres.NewRevokedTokenRepository(repoConfig)
	docRepo := postgres.NewDocumentRepository(repoConfig)
	chunkRepo := postgres.NewTextChunkRepository(repoConfig)
	sentenceRepo := postgres.NewSentenceRepository(repoConfig)
	scoreRepo := postgres.NewScoreRepository(repoConfig)
	taskRepo := postgres.NewTaskRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	localTokens, err := auth.NewLocalTokens(cfg.JWTSecret, cfg.JWTTTL, logger)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}

	// Seeding never calls the cloud functions
	rewriter := seed.NewFixtureRewriter(fixtures.Rewrites())
	scorer := scoring.NewPlaceholderScorer(rand.NewPCG(1, 2))

	analyzer := service.NewTextAnalyzer()
	authorizer := svcauth.NewOwnerBasedAuthorizer(docRepo, taskRepo)

	seeder := seed.NewSeeder(
		service.NewAccountService(userRepo, revokedRepo, localTokens, logger),
		service.NewDocumentService(docRepo, chunkRepo, sentenceRepo, scoreRepo, txManager, analyzer, scorer, rewriter, logger),
		service.NewTaskService(taskRepo, txManager, authorizer, logger),
		userRepo,
		logger,
	)

	summary, err := seeder.Seed(ctx, fixtures)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	logger.Info("seeding complete",
		"users", summary.Users,
		"documents", summary.Documents,
		"tasks", summary.Tasks,
	)
}
