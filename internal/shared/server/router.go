package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mathmend-backend/internal/auth"
	"mathmend-backend/internal/documents"
	"mathmend-backend/internal/render"
	"mathmend-backend/internal/results"
	"mathmend-backend/internal/shared/config"
	"mathmend-backend/internal/shared/metrics"
	"mathmend-backend/internal/shared/server/middleware"
	"mathmend-backend/internal/shared/server/respond"
	"mathmend-backend/internal/tutor"
)

const askRateGroup = "ASK_QUESTION"

// RouterDeps carries everything the router needs; bootstrap fills it.
type RouterDeps struct {
	Config           config.Config
	Verifier         middleware.IdentityVerifier
	AuthHandler      *auth.Handler
	DocumentsHandler *documents.Handler
	ResultsHandler   *results.Handler
	TutorHandler     *tutor.Handler
	RenderHandler    *render.Handler

	// StaticFilesDir, when set, is served under /files for the local
	// object store.
	StaticFilesDir string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	if deps.StaticFilesDir != "" {
		r.StaticFS("/files", gin.Dir(deps.StaticFilesDir, false))
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterRoutes(r)
	}

	api := r.Group("/api")
	api.Use(middleware.Auth(deps.Config.Env, deps.Verifier))
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			askRateGroup: {Rate: 0.5, Burst: 5},
		},
		GroupFor: func(c *gin.Context) string {
			if strings.HasSuffix(c.FullPath(), "/ask-question") {
				return askRateGroup
			}
			return ""
		},
	}))

	if deps.DocumentsHandler != nil {
		deps.DocumentsHandler.RegisterRoutes(api)
	}
	if deps.ResultsHandler != nil {
		deps.ResultsHandler.RegisterRoutes(api)
	}
	if deps.TutorHandler != nil {
		deps.TutorHandler.RegisterRoutes(api)
	}
	if deps.RenderHandler != nil {
		deps.RenderHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":5000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
