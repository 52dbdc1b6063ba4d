package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"stock-manager/internal/cache"
	"stock-manager/internal/config"
	"stock-manager/internal/database"
	custommiddleware "stock-manager/internal/middleware"
	"stock-manager/internal/repository"
	"stock-manager/internal/service"
	"stock-manager/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"database": database.Health(db),
		})
	})

	// Redis backs both report caching and rate limiting; when disabled the
	// cache degrades to a noop and limiters pass everything through
	var redisClient *redis.Client
	var reportCache cache.Cache = &cache.Noop{}
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		reportCache = cache.NewRedis(redisClient)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	clientRepo := repository.NewClientRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	reportRepo := repository.NewReportRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT.Secret)
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	clientService := service.NewClientService(clientRepo)
	postingService := service.NewPostingService(ledgerRepo, clientRepo, productRepo)
	reportService := service.NewReportService(reportRepo, saleRepo, purchaseRepo, productRepo, reportCache, logger)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	clientHandler := transport.NewClientHandler(clientService, logger)
	saleHandler := transport.NewSaleHandler(postingService, reportService, logger)
	purchaseHandler := transport.NewPurchaseHandler(postingService, reportService, logger)
	dashboardHandler := transport.NewDashboardHandler(reportService, logger)
	inventoryHandler := transport.NewInventoryHandler(reportService, logger)
	cacheHandler := transport.NewCacheHandler(reportService, logger)

	// Auth and per-route rate limiters
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	postingLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 20,
		Window:            time.Minute,
		KeyPrefix:         "rate_limit:posting",
	}, logger)
	registerLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 5,
		Window:            time.Minute,
		KeyPrefix:         "rate_limit:register",
	}, logger)
	loginLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 10,
		Window:            time.Minute,
		KeyPrefix:         "rate_limit:login",
	}, logger)

	// Public auth routes
	userHandler.RegisterRoutes(router, authMiddleware, registerLimiter, loginLimiter)

	// Everything else under /api requires a valid access token
	router.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		dashboardHandler.RegisterRoutes(r)
		inventoryHandler.RegisterRoutes(r)
		catalogHandler.RegisterRoutes(r)
		clientHandler.RegisterRoutes(r)
		saleHandler.RegisterRoutes(r, postingLimiter)
		purchaseHandler.RegisterRoutes(r, postingLimiter)
		cacheHandler.RegisterRoutes(r)
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
