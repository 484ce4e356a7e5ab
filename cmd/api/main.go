package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vinay9977/CodeCritic/internal/application"
	appanalyses "github.com/vinay9977/CodeCritic/internal/application/analyses"
	appauth "github.com/vinay9977/CodeCritic/internal/application/auth"
	apprepos "github.com/vinay9977/CodeCritic/internal/application/repos"
	"github.com/vinay9977/CodeCritic/internal/config"
	domain "github.com/vinay9977/CodeCritic/internal/domain/analyses"
	domrepos "github.com/vinay9977/CodeCritic/internal/domain/repos"
	"github.com/vinay9977/CodeCritic/internal/domain/users"
	openaicli "github.com/vinay9977/CodeCritic/internal/infra/ai/openai"
	mysqlp "github.com/vinay9977/CodeCritic/internal/infra/db/mysql"
	postgresp "github.com/vinay9977/CodeCritic/internal/infra/db/postgres"
	"github.com/vinay9977/CodeCritic/internal/infra/github"
	"github.com/vinay9977/CodeCritic/internal/infra/httpserver"
	minioStore "github.com/vinay9977/CodeCritic/internal/infra/storage"
	"github.com/vinay9977/CodeCritic/internal/middleware"
)

func main() {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()

	// connect database (driver is selectable)
	var db *sql.DB
	var analysisRepo domain.Repository
	var userRepo users.Repository
	var repoStore domrepos.Store
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		analysisRepo = postgresp.NewAnalysisRepository(db)
		userRepo = postgresp.NewUserRepository(db)
		repoStore = postgresp.NewRepoRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		analysisRepo = mysqlp.NewAnalysisRepository(db)
		userRepo = mysqlp.NewUserRepository(db)
		repoStore = mysqlp.NewRepoRepository(db)
	}
	defer db.Close()

	// optional payload archive
	var archive domain.PayloadArchive
	if cfg.MinioEnabled() {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		archive = store
	}

	// adapters
	oauth := github.NewOAuth(cfg.Github.ClientID, cfg.Github.ClientSecret, cfg.Github.RedirectURI)
	provider := github.NewRepoProvider()
	fetcher := github.NewCodeFetcher()
	analyzer := openaicli.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, "", cfg.OpenAI.MockMode)
	jwtMgr := middleware.NewJWTManager(cfg.Auth.JWTSecret, 24*time.Hour)

	clock := application.SystemClock{}

	authSvc := &appauth.Service{
		Users:  userRepo,
		OAuth:  oauth,
		Tokens: jwtMgr,
		Clock:  clock,
	}
	reposSvc := &apprepos.Service{
		Store:    repoStore,
		Provider: provider,
		Users:    userRepo,
		Clock:    clock,
	}
	analysesSvc := &appanalyses.Service{
		Repo:     analysisRepo,
		Repos:    repoStore,
		Users:    userRepo,
		Fetcher:  fetcher,
		Analyzer: analyzer,
		Archive:  archive,
		Clock:    clock,
	}

	mux := httpserver.NewRouter(authSvc, reposSvc, analysesSvc, jwtMgr, httpserver.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		HealthCheckers: map[string]middleware.HealthChecker{
			"database": &middleware.DatabaseHealthChecker{DB: db},
		},
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
