package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"mathmend-backend/internal/auth"
	"mathmend-backend/internal/documents"
	"mathmend-backend/internal/llm"
	"mathmend-backend/internal/llm/openai"
	"mathmend-backend/internal/ocr"
	"mathmend-backend/internal/ocr/mathpix"
	"mathmend-backend/internal/render"
	"mathmend-backend/internal/results"
	"mathmend-backend/internal/shared/config"
	"mathmend-backend/internal/shared/server"
	"mathmend-backend/internal/shared/storage/db"
	"mathmend-backend/internal/shared/storage/object"
	localstore "mathmend-backend/internal/shared/storage/object/local"
	s3store "mathmend-backend/internal/shared/storage/object/s3"
	"mathmend-backend/internal/tutor"
)

// App holds the wired dependencies behind the router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	DocumentsRepo documents.Repo
	ResultsRepo   results.Repo

	AuthService      *auth.Service
	DocumentsService *documents.Service
	Pipeline         *results.Pipeline
	TutorService     *tutor.Service
	RenderService    *render.Service
}

// Build prepares dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}

	if sqlDB != nil {
		app.DocumentsRepo = &documents.PGRepo{DB: sqlDB}
		app.ResultsRepo = &results.PGRepo{DB: sqlDB}
	} else {
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.ResultsRepo = results.NewMemoryRepo()
	}

	app.AuthService = buildAuth(cfg)
	llmClient := buildLLM(cfg)
	ocrClient := buildOCR(cfg)

	app.DocumentsService = &documents.Service{Store: store, Repo: app.DocumentsRepo}
	app.Pipeline = &results.Pipeline{
		Docs:  app.DocumentsService,
		Store: store,
		OCR:   ocrClient,
		LLM:   llmClient,
		Repo:  app.ResultsRepo,
	}
	app.TutorService = &tutor.Service{LLM: llmClient, Results: app.ResultsRepo}
	app.RenderService = &render.Service{
		Renderer: render.NewClient(cfg.LatexRenderURL),
		Store:    store,
	}

	deps := server.RouterDeps{
		Config:           cfg,
		DocumentsHandler: documents.NewHandler(app.DocumentsService),
		ResultsHandler:   results.NewHandler(app.Pipeline),
		TutorHandler:     tutor.NewHandler(app.TutorService),
		RenderHandler:    render.NewHandler(app.RenderService),
	}
	if app.AuthService != nil {
		deps.AuthHandler = auth.NewHandler(app.AuthService)
		deps.Verifier = auth.Verifier{Svc: app.AuthService}
	}
	if ls, ok := store.(*localstore.Store); ok {
		deps.StaticFilesDir = ls.BaseDir()
	}
	app.Router = server.NewRouter(deps)

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, fmt.Errorf("build s3 store: %w", err)
		}
		return store, nil
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL), nil
	}
}

func buildAuth(cfg config.Config) *auth.Service {
	provider, err := auth.NewGoTrueClient(cfg.AuthProviderURL, cfg.AuthProviderKey)
	if err != nil {
		log.Printf("bootstrap: identity provider unavailable; account routes disabled: %v", err)
		return nil
	}
	return &auth.Service{Provider: provider}
}

func buildLLM(cfg config.Config) llm.Client {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		log.Printf("bootstrap: OPENAI_API_KEY empty; using placeholder responses")
		return llm.PlaceholderClient{}
	}
	client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.OpenAIBaseURL)
	if err != nil {
		log.Printf("bootstrap: openai client unavailable; using placeholder responses: %v", err)
		return llm.PlaceholderClient{}
	}
	return client
}

func buildOCR(cfg config.Config) ocr.Client {
	client, err := mathpix.New(cfg.MathpixAppID, cfg.MathpixAppKey, cfg.MathpixBaseURL)
	if err != nil {
		log.Printf("bootstrap: OCR vendor unavailable; processing will be rejected: %v", err)
		return ocr.Unconfigured{}
	}
	return client
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
