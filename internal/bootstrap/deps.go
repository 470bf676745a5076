// Package bootstrap wires configuration, stores, services and routes.
package bootstrap

import (
	"context"
	"time"

	"drafly_server/adapter/out/llm"
	"drafly_server/adapter/out/persistence"
	"drafly_server/adapter/out/provider/gmail"
	"drafly_server/config"
	"drafly_server/core/service/auth"
	"drafly_server/core/service/dispatch"
	"drafly_server/core/service/draft"
	"drafly_server/core/service/ingest"
	"drafly_server/infra/database"
	"drafly_server/pkg/crypto"
	"drafly_server/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Dependencies holds every wired component.
type Dependencies struct {
	Config *config.Config

	DB    *pgxpool.Pool
	SQLDB *sqlx.DB
	Redis *redis.Client

	CredentialRepo *persistence.CredentialAdapter
	EmailRepo      *persistence.EmailAdapter
	DraftRepo      *persistence.DraftAdapter
	StateStore     *persistence.RedisOAuthStateStore

	GmailProvider *gmail.Adapter
	LLMClient     *llm.Client

	SessionIssuer   *auth.SessionIssuer
	TokenService    *auth.TokenService
	IngestService   *ingest.Service
	DispatchService *dispatch.Service
	DraftService    *draft.Service
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	// Database (pgxpool for health probes)
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	deps.DB = db
	cleanups = append(cleanups, func() { db.Close() })

	// Database (sqlx for the repositories)
	sqlDB, err := database.NewSQLX(cfg.DatabaseURL)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	deps.SQLDB = sqlDB
	cleanups = append(cleanups, func() { sqlDB.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := persistence.EnsureSchema(ctx, sqlDB); err != nil {
		logger.WithError(err).Error("schema setup failed")
	}

	// Redis (optional; state validation is skipped without it)
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("redis connection failed, oauth state validation disabled")
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { redisClient.Close() })
			deps.StateStore = persistence.NewRedisOAuthStateStore(redisClient)
		}
	}

	// Repositories
	var encryptor *crypto.Encryptor
	if cfg.TokenEncryptionKey != "" {
		encryptor, err = crypto.NewEncryptor(cfg.TokenEncryptionKey)
		if err != nil {
			logger.WithError(err).Warn("token encryption disabled")
		}
	}
	deps.CredentialRepo = persistence.NewCredentialAdapter(sqlDB, encryptor)
	deps.EmailRepo = persistence.NewEmailAdapter(sqlDB)
	deps.DraftRepo = persistence.NewDraftAdapter(sqlDB)

	// Providers
	deps.GmailProvider = gmail.NewAdapter()
	deps.LLMClient = llm.NewClient(llm.ClientConfig{
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	})

	// Services
	deps.SessionIssuer = auth.NewSessionIssuer(cfg.JWTSecret, time.Duration(cfg.SessionTTLDay)*24*time.Hour)
	deps.TokenService = auth.NewTokenService(cfg, deps.CredentialRepo, deps.SessionIssuer)
	deps.IngestService = ingest.NewService(deps.TokenService, deps.GmailProvider, deps.EmailRepo, cfg.UnreadFetchLimit)
	deps.DispatchService = dispatch.NewService(deps.TokenService, deps.GmailProvider)
	deps.DraftService = draft.NewService(deps.DraftRepo, deps.EmailRepo, deps.LLMClient, deps.DispatchService)

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	return deps, cleanup, nil
}
