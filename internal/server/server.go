package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/assets"
	"storefront/internal/config"
	"storefront/internal/database"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrMissingJWTSecret is returned when production runs without a signing key
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in production")

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, db database.Service) (*Server, error) {
	secret, err := jwtSecret(cfg, logger)
	if err != nil {
		return nil, err
	}

	verifier, err := service.NewCredentialVerifier(cfg.Auth.PasswordScheme)
	if err != nil {
		return nil, err
	}

	store, err := assets.OpenStore(ctx, cfg.Assets, cfg.Minio)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset store: %w", err)
	}
	images := assets.NewHandler(store, cfg.Assets.MaxFiles, logger)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())
	accountRepo := repository.NewAccountRepository(db.DB())

	// Initialize services
	tokens := service.NewTokenIssuer(secret, cfg.JWT.AccessTokenTTL())
	catalogService := service.NewCatalogService(categoryRepo, productRepo, images, logger)
	accountService := service.NewAccountService(accountRepo, verifier, tokens, logger)

	router := chi.NewRouter()
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsDevelopment()))

	s := &Server{
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}
	router.Get("/health", s.health)

	authMiddleware := custommiddleware.AuthMiddleware(accountService, logger)
	adminMiddleware := custommiddleware.RequireAdmin(accountService, logger)
	rateLimitMiddleware := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            cfg.RateLimit.Window(),
		KeyPrefix:         "storefront:ratelimit:auth",
	}, logger)

	// Register routes
	transport.NewAccountHandler(accountService, logger).RegisterRoutes(router, rateLimitMiddleware, authMiddleware, adminMiddleware)
	transport.NewCategoryHandler(catalogService, logger).RegisterRoutes(router, authMiddleware, adminMiddleware)
	transport.NewProductHandler(catalogService, cfg.Assets.MaxUploadBytes(), logger).RegisterRoutes(router, authMiddleware, adminMiddleware)
	transport.NewAssetHandler(images, cfg.Assets.PublicPath, logger).RegisterRoutes(router)

	s.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
	}

	return s, nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	dbHealth := s.db.Health()
	report := map[string]interface{}{
		"status":   "ok",
		"database": dbHealth,
	}

	if dbHealth["status"] != "up" {
		status = http.StatusServiceUnavailable
		report["status"] = "degraded"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		// Rate limiting fails open without Redis
		report["redis"] = "down"
	} else {
		report["redis"] = "up"
	}

	custommiddleware.RespondWithJSON(w, status, report)
}

// jwtSecret returns the configured signing key. Development servers fall
// back to a random per-process key.
func jwtSecret(cfg *config.Config, logger *zap.Logger) (string, error) {
	if cfg.JWT.Secret != "" {
		return cfg.JWT.Secret, nil
	}
	if !cfg.IsDevelopment() {
		return "", ErrMissingJWTSecret
	}
	logger.Warn("JWT_SECRET not set, using a random key; tokens will not survive a restart")
	return uuid.NewString(), nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if err := s.redis.Close(); err != nil {
		s.logger.Error("Failed to close redis client", zap.Error(err))
	}

	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database connection", zap.Error(err))
	}

	s.logger.Sync()
	return nil
}
