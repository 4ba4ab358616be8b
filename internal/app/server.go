// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"nichifier-service/internal/cache"
	"nichifier-service/internal/config"
	"nichifier-service/internal/db"
	"nichifier-service/internal/domain/auth"
	"nichifier-service/internal/domain/monetisation"
	adminHandler "nichifier-service/internal/handlers/admin"
	authHandler "nichifier-service/internal/handlers/auth"
	monetisationHandler "nichifier-service/internal/handlers/monetisation"
	nicheHandler "nichifier-service/internal/handlers/niche"
	subscriptionHandler "nichifier-service/internal/handlers/subscription"
	wsHandler "nichifier-service/internal/handlers/websocket"
	"nichifier-service/internal/middleware"
	"nichifier-service/internal/pkg/jwt"
	"nichifier-service/internal/pkg/session"
	"nichifier-service/internal/repository/postgres"
	adminUsecase "nichifier-service/internal/service/admin"
	authUsecase "nichifier-service/internal/service/auth"
	monetisationUsecase "nichifier-service/internal/service/monetisation"
	"nichifier-service/internal/service/newsletter"
	nicheUsecase "nichifier-service/internal/service/niche"
	subscriptionUsecase "nichifier-service/internal/service/subscription"
	"nichifier-service/internal/websocket"
	wsHandlers "nichifier-service/internal/websocket/handler"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg        config.AppConfig
	engine     *gin.Engine
	httpServer *http.Server
	pool       *pgxpool.Pool
	redis      redis.UniversalClient
	stopHub    context.CancelFunc
	logger     *zap.Logger
}

// NewServer connects to PostgreSQL and Redis and wires every service and route.
func NewServer(cfg config.AppConfig, logger *zap.Logger) (*Server, error) {
	ctx := context.Background()

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(db.PostgresConfig{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := db.InitSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("connected to PostgreSQL")

	// ----- Redis -----
	redisClient, err := db.NewRedis(db.RedisConfig{
		Addresses: []string{cfg.RedisAddr},
		Password:  cfg.RedisPass,
		PoolSize:  10,
	})
	if err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(cfg.JWT)
	if err != nil {
		pool.Close()
		redisClient.Close()
		return nil, fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- Repositories -----
	userRepo := postgres.NewUserRepository(pool)
	nicheRepo := postgres.NewNicheRepository(pool)
	issueRepo := postgres.NewIssueRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	settingsRepo := postgres.NewPlatformSettingsRepository(pool)
	planRepo := postgres.NewCreatorPlanRepository(pool)
	creatorSubRepo := postgres.NewCreatorSubscriptionRepository(pool)

	// ----- WebSocket Hub -----
	// The hub authenticates through the auth service, which is built below.
	var authService *authUsecase.AuthService
	hub := websocket.NewHub(websocket.AuthenticatorFunc(
		func(ctx context.Context, token string) (*jwt.Claims, *auth.User, error) {
			return authService.Authenticate(ctx, token)
		},
	), logger)

	// ----- Services (Usecases) -----
	monetisationService := monetisationUsecase.NewService(monetisationUsecase.Deps{
		Settings:             settingsRepo,
		Plans:                planRepo,
		CreatorSubscriptions: creatorSubRepo,
		Niches:               nicheRepo,
		Users:                userRepo,
		Subscriptions:        subscriptionRepo,
		Cache:                cache.NewSettingsCache(redisClient, cfg.SettingsCacheTTL),
		Notifier:             hub,
	}, monetisation.PayoutPolicy{ClampNegativePayout: cfg.ClampNegativePayout}, logger)

	authService = authUsecase.NewAuthService(
		userRepo,
		jwtManager,
		session.NewRateLimiter(redisClient),
		session.NewBlacklist(redisClient),
		monetisationService,
		logger,
	)
	nicheService := nicheUsecase.NewService(nicheRepo, monetisationService, logger)
	subscriptionService := subscriptionUsecase.NewSubscriptionService(
		subscriptionRepo,
		nicheRepo,
		monetisationService,
		hub,
		logger,
	)
	newsletterService := newsletter.NewService(
		nicheRepo,
		issueRepo,
		newsletter.NewFeedFetcher(cfg.NewsFeedTimeout, logger),
		newsletter.NewDrafter(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger),
		logger,
	)

	hub.RegisterHandler(wsHandlers.NewPlanUsageHandler(monetisationService, logger))
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	// ----- Seed admin -----
	if err := seedAdmin(ctx, cfg, authService, logger); err != nil {
		// Don't fail startup, just log the error
		logger.Error("failed to seed admin", zap.Error(err))
	}

	// ----- Router -----
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		middleware.RequestLogger(logger),
		middleware.RecoveryMiddleware(logger),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)
	SetupRouter(engine, &Handlers{
		AdminHandler:        adminHandler.NewAdminHandler(adminUsecase.NewDashboardService(userRepo, nicheRepo, logger)),
		AuthHandler:         authHandler.NewAuthHandler(authService, cfg.AuthCookieName, cfg.SecureCookies, logger),
		NicheHandler:        nicheHandler.NewNicheHandler(nicheService, newsletterService, logger),
		SubscriptionHandler: subscriptionHandler.NewSubscriptionHandler(subscriptionService),
		MonetisationHandler: monetisationHandler.NewMonetisationHandler(monetisationService, logger),
		WSHandler:           wsHandler.NewWebSocketHandler(hub, cfg.CORSAllowedOrigins, cfg.AuthCookieName, logger),
		AuthMiddleware:      middleware.NewAuthMiddleware(authService, cfg.AuthCookieName),
	})

	return &Server{
		cfg:    cfg,
		engine: engine,
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		pool:    pool,
		redis:   redisClient,
		stopHub: stopHub,
		logger:  logger,
	}, nil
}

// Start serves HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains HTTP, stops the hub and closes the pool and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.stopHub()
	s.pool.Close()
	if cerr := s.redis.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// seedAdmin creates the configured admin when no admin exists yet.
func seedAdmin(ctx context.Context, cfg config.AppConfig, authService *authUsecase.AuthService, logger *zap.Logger) error {
	if cfg.SuperAdminEmail == "" || cfg.SuperAdminPassword == "" {
		logger.Warn("SUPER_ADMIN_EMAIL or SUPER_ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return authService.EnsureAdminExists(ctx, cfg.SuperAdminEmail, cfg.SuperAdminPassword, cfg.SuperAdminName)
}
