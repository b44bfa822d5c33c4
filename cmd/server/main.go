package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"starc/internal/auth"
	"starc/internal/config"
	"starc/internal/domain/services"
	"starc/internal/handler"
	"starc/internal/middleware"
	"starc/internal/repository/postgres"
	"starc/internal/service"
	svcauth "starc/internal/service/auth"
	"starc/internal/service/scoring"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg := config.Load()

	logger, closeLog, err := config.NewLogger(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"scoring_mode", cfg.ScoringMode,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.RunMigrations(pool, tables, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("database ready")

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

	var external auth.TokenVerifier
	if cfg.AuthJWKSURL != "" {
		jwks, err := auth.NewJWKSVerifier(ctx, cfg.AuthJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWKS verifier: %v", err)
		}
		external = jwks
	}
	authenticator := auth.NewAuthenticator(localTokens, external, userRepo, revokedRepo, logger)
	defer authenticator.Close()

	client := scoring.NewClient(cfg.ScoringSAURL, cfg.RewriteURL, cfg.GCAPIKey, cfg.ScoringTimeout, logger)
	var scorer services.Scorer = client
	if cfg.ScoringMode == config.ScoringModePlaceholder {
		scorer = scoring.NewPlaceholderScorer(nil)
		logger.Warn("placeholder scoring enabled, scores are random")
	}

	analyzer := service.NewTextAnalyzer()
	authorizer := svcauth.NewOwnerBasedAuthorizer(docRepo, taskRepo)

	accountService := service.NewAccountService(userRepo, revokedRepo, localTokens, logger)
	docService := service.NewDocumentService(docRepo, chunkRepo, sentenceRepo, scoreRepo, txManager, analyzer, scorer, client, logger)
	suggestionService := service.NewSuggestionService(docRepo, chunkRepo, sentenceRepo, txManager, authorizer, analyzer, logger)
	searchService := service.NewSearchService(docRepo)
	taskService := service.NewTaskService(taskRepo, txManager, authorizer, logger)

	logger.Info("services initialized")

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, &handler.Handlers{
		Health:      handler.NewHealthHandler(pool),
		Auth:        handler.NewAuthHandler(accountService, logger),
		Documents:   handler.NewDocumentHandler(docService, cfg.IngestTimeout, logger),
		Suggestions: handler.NewSuggestionHandler(suggestionService, logger),
		Search:      handler.NewSearchHandler(searchService, logger),
		Tasks:       handler.NewTaskHandler(taskService, logger),
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: middleware.Chain(mux,
			corsHandler.Handler,
			middleware.Recovery(logger),
			middleware.RequestLogger(logger),
			middleware.Auth(authenticator, logger, handler.PublicRoutes...),
		),
		ReadTimeout: 15 * time.Second,
		// Covers one scoring call; document ingestion extends its own deadline
		WriteTimeout: cfg.ScoringTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
