package main

import (
	"crypto/rsa"
	"database/sql"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/samoylenkodmitry/shrtlin/adapters/clicks"
	"github.com/samoylenkodmitry/shrtlin/adapters/events"
	"github.com/samoylenkodmitry/shrtlin/adapters/postgres"
	"github.com/samoylenkodmitry/shrtlin/adapters/store"
	"github.com/samoylenkodmitry/shrtlin/adapters/tokenizer"
	"github.com/samoylenkodmitry/shrtlin/internal/config"
	"github.com/samoylenkodmitry/shrtlin/internal/observability"
	"github.com/samoylenkodmitry/shrtlin/ports"
	"github.com/samoylenkodmitry/shrtlin/service"
	"github.com/samoylenkodmitry/shrtlin/transport/http"
)

func main() {
	_ = godotenv.Load()

	logger := observability.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load_config_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	if err := observability.InitSentry(cfg.SentryDSN, cfg.AppEnv); err != nil {
		logger.Error("init_sentry_failed", map[string]any{"error": err.Error()})
	}
	defer observability.FlushSentry()

	database, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("open_database_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Ping(); err != nil {
		logger.Error("ping_database_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	if err := postgres.RunMigrations(database); err != nil {
		logger.Error("migrations_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	signKey, err := loadOrGenerateKey(cfg, logger)
	if err != nil {
		logger.Error("load_key_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	tk := tokenizer.NewJWTTokenizer(tokenizer.Config{
		SignKey:      signKey,
		Issuer:       cfg.Issuer,
		Audience:     cfg.Audience,
		ChallengeTTL: cfg.ChallengeTTL,
		SessionTTL:   cfg.SessionTTL,
	})

	// Redis is optional: without it the replay guard and click stats
	// fall back to in-process versions and events are dropped.
	var (
		guard      ports.ReplayGuard    = store.NewMemoryGuard()
		clickStore ports.ClickStore     = clicks.NewMemoryClickStore()
		eventPub   ports.EventPublisher = events.NopPublisher{}
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("parse_redis_url_failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		guard = store.NewRedisGuard(redisClient, cfg.ChallengeTTL)
		clickStore = clicks.NewRedisClickStore(redisClient)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			logger.Error("create_publisher_failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		eventPub = events.NewWatermillPublisher(publisher)
	}

	authService := service.NewAuthService(
		tk,
		postgres.NewUserRepository(database),
		guard,
		eventPub,
		logger,
		cfg.PowPrefix,
	)
	urlService := service.NewURLService(
		postgres.NewURLRepository(database),
		clickStore,
		logger,
		cfg.BaseURL,
	)

	router := http.SetupRouter(authService, urlService, database.PingContext)

	logger.Info("server_starting", map[string]any{"addr": cfg.Addr})
	if err := router.Run(cfg.Addr); err != nil {
		logger.Error("server_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

// loadOrGenerateKey reads the signing key from JWT_PRIVATE_KEY_FILE or,
// when unset, generates an ephemeral one. Ephemeral keys invalidate all
// outstanding tokens on restart, which is fine for development only.
func loadOrGenerateKey(cfg config.Config, logger *observability.Logger) (*rsa.PrivateKey, error) {
	if cfg.JWTPrivateKeyFile != "" {
		return tokenizer.LoadKey(cfg.JWTPrivateKeyFile)
	}
	logger.Warn("generating_ephemeral_key", map[string]any{
		"hint": "set JWT_PRIVATE_KEY_FILE to keep tokens valid across restarts",
	})
	return tokenizer.GenerateKey()
}
