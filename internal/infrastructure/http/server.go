package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	handlers "github.com/flmanager/flmanager/internal/adapter/handler/http"
	adapterRepo "github.com/flmanager/flmanager/internal/adapter/repository"
	"github.com/flmanager/flmanager/internal/config"
	domainRepo "github.com/flmanager/flmanager/internal/domain/repository"
	"github.com/flmanager/flmanager/internal/middleware/auth"
	"github.com/flmanager/flmanager/internal/usecase"
	"github.com/flmanager/flmanager/pkg/logger"
)

// requestValidator plugs validator/v10 into echo's Validate hook
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
	db     *gorm.DB
}

func NewServer(cfg *config.Config, log *zap.Logger, db *gorm.DB) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	// Middleware
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.PATCH, echo.DELETE},
	}))

	return &Server{
		config: cfg,
		logger: log,
		echo:   e,
		db:     db,
	}
}

func (s *Server) Start() error {
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	// Services
	settingsService := usecase.NewSettingsService(s.db, s.logger)
	customerService := usecase.NewCustomerService(s.db, s.logger)
	subscriptionService := usecase.NewSubscriptionService(s.db, s.logger)
	giftCodeService := usecase.NewGiftCodeService(s.db, s.logger)
	timelineService := usecase.NewTimelineService(s.db, s.logger)
	revertService := usecase.NewRevertService(s.db, s.logger)
	rewardsService := usecase.NewRewardsService(s.db, s.logger)
	paymentService := usecase.NewPaymentService(s.db, s.logger)
	whatsappService := usecase.NewWhatsappService(s.db, s.logger)
	backupService := usecase.NewBackupService(s.db, s.logger)

	remoteFactory := func(baseURL, apiKey string) domainRepo.RemoteStore {
		return adapterRepo.NewSupabaseStore(baseURL, apiKey, s.config.Service.Sync.RequestTimeout, s.logger)
	}
	syncService := usecase.NewSyncService(s.db, s.config.Service.Sync, remoteFactory, s.logger)

	tokenIssuer := auth.NewTokenIssuer(s.config.Service.JWTSecret, s.config.Service.UnlockTokenTTL)

	// Handlers
	customerHandler := handlers.NewCustomerHandler(s.logger, customerService, timelineService, paymentService, whatsappService, subscriptionService)
	subscriptionHandler := handlers.NewSubscriptionHandler(s.logger, subscriptionService, settingsService)
	giftCodeHandler := handlers.NewGiftCodeHandler(s.logger, giftCodeService)
	timelineHandler := handlers.NewTimelineHandler(s.logger, timelineService, revertService)
	rewardsHandler := handlers.NewRewardsHandler(s.logger, rewardsService, settingsService)
	paymentHandler := handlers.NewPaymentHandler(s.logger, paymentService)
	whatsappHandler := handlers.NewWhatsappHandler(s.logger, whatsappService, settingsService)
	syncHandler := handlers.NewSyncHandler(s.logger, syncService)
	backupHandler := handlers.NewBackupHandler(s.logger, backupService)
	settingsHandler := handlers.NewSettingsHandler(s.logger, settingsService, tokenIssuer)

	// Destructive routes require an unlock token when the PIN lock is on.
	unlock := auth.RequireUnlock(auth.UnlockConfig{
		Secret: s.config.Service.JWTSecret,
		Logger: s.logger,
		Enabled: func() bool {
			settings, err := settingsService.Get(context.Background())
			if err != nil {
				return true
			}
			return settings.PINLockEnabled
		},
	})

	v1 := s.echo.Group("/api/v1")

	v1.POST("/auth/unlock", settingsHandler.Unlock)

	customers := v1.Group("/customers")
	customers.GET("", customerHandler.List)
	customers.POST("", customerHandler.Create)
	customers.GET("/:id", customerHandler.Get)
	customers.PATCH("/:id", customerHandler.Update)
	customers.DELETE("/:id", customerHandler.Delete, unlock)
	customers.GET("/:id/subscriptions", customerHandler.ListSubscriptions)
	customers.GET("/:id/timeline", customerHandler.ListTimeline)
	customers.GET("/:id/payments", customerHandler.ListPayments)
	customers.GET("/:id/whatsapp-logs", customerHandler.ListWhatsappLogs)
	customers.GET("/:id/milestones", rewardsHandler.ListMilestones)

	subscriptions := v1.Group("/subscriptions")
	subscriptions.POST("", subscriptionHandler.Save)
	subscriptions.POST("/:id/renew", subscriptionHandler.Renew)
	subscriptions.DELETE("/:id", subscriptionHandler.Delete, unlock)

	giftCodes := v1.Group("/gift-codes")
	giftCodes.GET("", giftCodeHandler.List)
	giftCodes.POST("", giftCodeHandler.Create)
	giftCodes.GET("/:id", giftCodeHandler.Get)
	giftCodes.DELETE("/:id", giftCodeHandler.Delete, unlock)

	timeline := v1.Group("/timeline")
	timeline.GET("", timelineHandler.List)
	timeline.GET("/:id", timelineHandler.Get)
	timeline.POST("/:id/revert", timelineHandler.Revert, unlock)

	rewards := v1.Group("/rewards")
	rewards.GET("/claimable", rewardsHandler.ListClaimable)
	rewards.POST("/claim-year", rewardsHandler.ClaimYear)
	rewards.POST("/claim-code", rewardsHandler.ClaimGiftCode)

	payments := v1.Group("/payments")
	payments.GET("", paymentHandler.List)
	payments.GET("/revenue", paymentHandler.TotalRevenue)

	whatsapp := v1.Group("/whatsapp")
	whatsapp.POST("/render", whatsappHandler.Render)
	whatsapp.POST("/logs", whatsappHandler.LogMessage)
	whatsapp.GET("/templates", whatsappHandler.ListTemplates)
	whatsapp.PUT("/templates", whatsappHandler.SaveTemplate)
	whatsapp.DELETE("/templates/:id", whatsappHandler.DeleteTemplate)

	countryTemplates := v1.Group("/country-templates")
	countryTemplates.GET("", whatsappHandler.ListCountryTemplates)
	countryTemplates.PUT("", whatsappHandler.SaveCountryTemplate)
	countryTemplates.DELETE("/:id", whatsappHandler.DeleteCountryTemplate)

	sync := v1.Group("/sync")
	sync.POST("", syncHandler.FullSync)
	sync.POST("/restore", syncHandler.RestoreFromCloud, unlock)

	backup := v1.Group("/backup")
	backup.GET("/export", backupHandler.Export)
	backup.POST("/import", backupHandler.Import, unlock)

	settings := v1.Group("/settings")
	settings.GET("", settingsHandler.Get)
	settings.PUT("", settingsHandler.Update, unlock)
}
