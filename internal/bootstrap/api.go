package bootstrap

import (
	"strings"

	httpadapter "drafly_server/adapter/in/http"
	"drafly_server/config"
	"drafly_server/infra/middleware"
	"drafly_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	logLevel := logger.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "drafly",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("failed to initialize dependencies")
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		ReadBufferSize:        16384,
		WriteBufferSize:       16384,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             1 * 1024 * 1024,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := true
	if allowOrigins == "" || allowOrigins == "*" {
		if cfg.IsProduction() {
			allowOrigins = ""
			allowCredentials = false
		} else {
			allowOrigins = "http://localhost:3000,http://localhost:5173"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: allowCredentials,
		MaxAge:           86400,
	}))

	// Health endpoints (no auth; the keep-alive loop pings /health)
	healthHandler := httpadapter.NewHealthHandler(deps.DB, deps.Redis)
	healthHandler.Register(app)

	// Authorization round trip (no auth; the provider redirects here)
	var stateStore httpadapter.OAuthStateStore
	if deps.StateStore != nil {
		stateStore = deps.StateStore
	}
	authHandler := httpadapter.NewAuthHandler(deps.TokenService, stateStore)
	authHandler.Register(app)

	// Authenticated API
	api := app.Group("/")
	api.Use(middleware.SessionAuth(deps.SessionIssuer))

	emailHandler := httpadapter.NewEmailHandler(deps.EmailRepo, deps.IngestService)
	emailHandler.Register(api)

	// Generation hits the LLM, so it gets a per-identity limit
	generateLimiter := middleware.NewRateLimiter(cfg.GenerateRateLimit, cfg.GenerateRateWindow)
	api.Use("/drafts/generate", generateLimiter.Handler())

	draftHandler := httpadapter.NewDraftHandler(deps.DraftService)
	draftHandler.Register(api)

	logger.Info("API server initialized")
	return app, cleanup, nil
}
