package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ema-residences/rental-system/internal/api/handler"
	"github.com/ema-residences/rental-system/internal/api/middleware"
	"github.com/ema-residences/rental-system/internal/core/domain"
	"github.com/ema-residences/rental-system/internal/core/service"
	"github.com/ema-residences/rental-system/internal/infrastructure/config"
	mongodb "github.com/ema-residences/rental-system/internal/infrastructure/db/mongo"
	redisdb "github.com/ema-residences/rental-system/internal/infrastructure/db/redis"
	"github.com/ema-residences/rental-system/internal/infrastructure/storage"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("rental"))

	// --- Dependencies ---
	mediaStore, err := storage.NewDiskMediaStore(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	userRepo := mongodb.NewUserRepository(db)
	residenceRepo := mongodb.NewResidenceRepository(db)
	reservationRepo := mongodb.NewReservationRepository(db)
	annonceRepo := mongodb.NewAnnonceRepository(db)
	idempotency := redisdb.NewIdempotencyStore(rdb)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	residenceService := service.NewResidenceService(residenceRepo, mediaStore, log)
	reservationService := service.NewReservationService(reservationRepo, residenceRepo, userRepo, idempotency, log)
	annonceService := service.NewAnnonceService(annonceRepo, mediaStore, log)

	authHandler := handler.NewAuthHandler(authService)
	residenceHandler := handler.NewResidenceHandler(residenceService)
	reservationHandler := handler.NewReservationHandler(reservationService)
	annonceHandler := handler.NewAnnonceHandler(annonceService)

	authRequired := middleware.Auth(cfg.JWTSecret, userRepo)
	listingRoles := middleware.RBAC(domain.RoleOwner, domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// --- Residences ---
	residences := e.Group("/api/residences")
	residences.GET("", residenceHandler.List)
	residences.GET("/:id", residenceHandler.Get)
	residences.POST("", residenceHandler.Create, authRequired, listingRoles)
	residences.PUT("/:id", residenceHandler.Update, authRequired)
	residences.DELETE("/:id", residenceHandler.Delete, authRequired)

	// --- Reservations ---
	reservations := e.Group("/api/reservations", authRequired)
	reservations.POST("", reservationHandler.Create)
	reservations.GET("/owner", reservationHandler.ListForOwner)
	reservations.GET("/client", reservationHandler.ListForClient)
	reservations.GET("/stats/owner", reservationHandler.OwnerStats)
	reservations.GET("/:id", reservationHandler.Get)
	reservations.PATCH("/:id/status", reservationHandler.TransitionStatus)
	reservations.DELETE("/:id", reservationHandler.Delete)

	// --- Annonces ---
	annonces := e.Group("/api/annonces")
	annonces.GET("", annonceHandler.List)
	annonces.GET("/:id", annonceHandler.Get)
	annonces.POST("", annonceHandler.Create, authRequired, listingRoles)

	// --- Static media ---
	e.Static("/uploads", cfg.UploadDir)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	return e, nil
}
