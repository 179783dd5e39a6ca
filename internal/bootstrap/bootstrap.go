package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/engageportal/internal/app/auth"
	appControllers "github.com/yigit/engageportal/internal/app/controllers"
	appMigrations "github.com/yigit/engageportal/internal/app/migrations"
	appRepos "github.com/yigit/engageportal/internal/app/repositories"
	appRoutes "github.com/yigit/engageportal/internal/app/routes"
	appServices "github.com/yigit/engageportal/internal/app/services"
	"github.com/yigit/engageportal/internal/config"
	"github.com/yigit/engageportal/internal/db"
	appMiddleware "github.com/yigit/engageportal/internal/middleware"
	pkgAuth "github.com/yigit/engageportal/internal/pkg/auth"
	"github.com/yigit/engageportal/internal/pkg/cache"
	"github.com/yigit/engageportal/internal/pkg/events"
	"github.com/yigit/engageportal/internal/pkg/helpers"
	"github.com/yigit/engageportal/internal/pkg/logger"
	"github.com/yigit/engageportal/internal/pkg/websocket"
	"github.com/yigit/engageportal/internal/upstream"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	SurveyService       appServices.SurveyService
	SubmissionService   appServices.SubmissionService
	AggregationService  appServices.AggregationService
	SessionService      appServices.CommunitySessionService
	NotificationService appServices.NotificationService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService

	Upstream  *upstream.Client
	Cache     *cache.Cache
	Ledger    appRepos.SubmissionLedger
	Publisher events.Publisher
	Hub       *websocket.Hub
	Logger    zerolog.Logger

	// closers release external resources, in reverse order of acquisition
	closers []func() error
}

// Close releases the resources acquired by BuildDependencies
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.Logger.Error().Err(err).Msg("Failed to release dependency")
		}
	}
	d.closers = nil
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations. With
// the database disabled it returns nil and the in-memory ledger is used.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	if !cfg.Database.Enabled {
		lgr.Warn().Msg("Database disabled, idempotency ledger is kept in memory")
		return nil, nil
	}

	lgr.Info().Str("host", cfg.Database.Host).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg, logger.Component("database"))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	migrator := appMigrations.NewMigrator(database.Pool, logger.Component("migrations"))
	if err := migrator.Migrate(ctx); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// setupCache builds the response cache over the configured store. For redis it
// also returns the store so it can be probed and closed.
func setupCache(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*cache.Cache, *cache.RedisStore, error) {
	ttl := helpers.ParseDuration(cfg.Cache.TTL, 5*time.Minute)
	cacheLogger := logger.Component("cache")

	if strings.ToLower(cfg.Cache.Driver) == config.CacheDriverRedis {
		store, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddr,
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.Cache.KeyPrefix,
			TTL:       ttl,
		})
		if err != nil {
			return nil, nil, err
		}
		lgr.Info().Str("addr", cfg.Cache.RedisAddr).Msg("Using redis response cache")
		return cache.New(store, cacheLogger), store, nil
	}

	cleanup := helpers.ParseDuration(cfg.Cache.CleanupInterval, 10*time.Minute)
	lgr.Info().Dur("ttl", ttl).Msg("Using in-process response cache")
	return cache.New(cache.NewMemoryStore(ttl, cleanup), cacheLogger), nil, nil
}

// setupPublisher connects to NATS when configured, otherwise events are dropped
func setupPublisher(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (events.Publisher, error) {
	if cfg.Events.NatsURL == "" {
		lgr.Info().Msg("No NATS URL configured, domain events are disabled")
		return events.NopPublisher{}, nil
	}

	publisher, err := events.NewNATSPublisher(ctx, events.NATSConfig{
		URL:           cfg.Events.NatsURL,
		StreamName:    cfg.Events.StreamName,
		SubjectPrefix: cfg.Events.SubjectPrefix,
	}, logger.Component("events"))
	if err != nil {
		return nil, err
	}
	lgr.Info().Str("url", cfg.Events.NatsURL).Str("stream", cfg.Events.StreamName).Msg("Publishing domain events to NATS")
	return publisher, nil
}

// BuildDependencies initializes the upstream client, cache, ledger, services and controllers.
// database may be nil.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	var err error
	deps.Upstream, err = upstream.NewClient(upstream.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: helpers.ParseDuration(cfg.Upstream.Timeout, 15*time.Second),
	}, logger.Component("upstream"))
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream client: %w", err)
	}

	var redisStore *cache.RedisStore
	deps.Cache, redisStore, err = setupCache(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to set up cache: %w", err)
	}
	if redisStore != nil {
		deps.closers = append(deps.closers, redisStore.Close)
	}

	deps.Publisher, err = setupPublisher(ctx, cfg, lgr)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to set up event publisher: %w", err)
	}
	deps.closers = append(deps.closers, deps.Publisher.Close)

	if database != nil {
		deps.Ledger = appRepos.NewSubmissionRepository(database.Pool, logger.Component("ledger"))
	} else {
		deps.Ledger = appRepos.NewMemorySubmissionLedger()
	}

	var notifier appServices.Notifier = appServices.NopNotifier{}
	if cfg.Realtime.Enabled {
		deps.Hub = websocket.NewHub(logger.Component("realtime"))
		notifier = deps.Hub
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService()
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	// Initialize services
	deps.SurveyService = appServices.NewSurveyService(
		deps.Upstream,
		deps.Cache,
		deps.AuthzService,
		deps.Publisher,
		notifier,
		logger.Component("surveys"),
		appServices.WithMaxPageWalk(cfg.Upstream.MaxPageWalk),
	)
	deps.SubmissionService = appServices.NewSubmissionService(
		deps.SurveyService,
		deps.Upstream,
		deps.Ledger,
		deps.Cache,
		deps.AuthzService,
		deps.Publisher,
		notifier,
		logger.Component("submissions"),
	)
	deps.AggregationService = appServices.NewAggregationService(
		deps.SurveyService,
		deps.Upstream,
		deps.Cache,
		deps.AuthzService,
		logger.Component("aggregation"),
	)
	deps.SessionService = appServices.NewCommunitySessionService(
		deps.Upstream,
		deps.Cache,
		deps.AuthzService,
		notifier,
		logger.Component("community-sessions"),
	)
	deps.NotificationService = appServices.NewNotificationService(
		deps.Upstream,
		deps.Cache,
		notifier,
		logger.Component("notifications"),
	)

	deps.Controllers = appRoutes.Controllers{
		Survey:           appControllers.NewSurveyController(deps.SurveyService, deps.SubmissionService, deps.AggregationService),
		Response:         appControllers.NewResponseController(deps.AggregationService),
		CommunitySession: appControllers.NewCommunitySessionController(deps.SessionService),
		Notification:     appControllers.NewNotificationController(deps.NotificationService),
		Health:           appControllers.NewHealthController(healthChecks(database, redisStore), healthGauges(database, deps.Hub)),
	}
	if deps.Hub != nil {
		upgrader := websocket.NewUpgrader(deps.Hub, cfg.Server.AllowedOrigins)
		deps.Controllers.Realtime = appControllers.NewRealtimeController(upgrader, lgr)
	}

	return deps, nil
}

// healthChecks lists the dependencies probed by the health endpoint
func healthChecks(database *db.PostgresDB, redisStore *cache.RedisStore) map[string]appControllers.HealthCheck {
	checks := map[string]appControllers.HealthCheck{}
	if database != nil {
		checks["database"] = database.Ping
	}
	if redisStore != nil {
		checks["cache"] = redisStore.Ping
	}
	return checks
}

// healthGauges lists the counters reported next to the checks
func healthGauges(database *db.PostgresDB, hub *websocket.Hub) map[string]appControllers.Gauge {
	gauges := map[string]appControllers.Gauge{}
	if database != nil {
		gauges["dbConnections"] = database.OpenConnections
	}
	if hub != nil {
		gauges["realtimeUsers"] = hub.ConnectedUsers
	}
	return gauges
}

// StartBackground runs the realtime hub and the ledger janitor until ctx is cancelled
func StartBackground(ctx context.Context, cfg *config.Config, deps *Dependencies) {
	if deps.Hub != nil {
		go deps.Hub.Run(ctx)
	}

	retention := helpers.ParseDuration(cfg.Database.LedgerRetention, 30*24*time.Hour)
	go appRepos.RunLedgerJanitor(ctx, deps.Ledger, retention, time.Hour,
		logger.Component("ledger"))
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.CORS(cfg.Server.AllowedOrigins),
	)

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	return router
}
