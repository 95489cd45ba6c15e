package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mapda-dev/mapda-api/internal/config"
	"github.com/mapda-dev/mapda-api/internal/handler"
	"github.com/mapda-dev/mapda-api/internal/provider"
	"github.com/mapda-dev/mapda-api/internal/repository"
	"github.com/mapda-dev/mapda-api/internal/service"
	"github.com/mapda-dev/mapda-api/internal/utils"
	"github.com/mapda-dev/mapda-api/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
		cfg.JWT.AdminTokenExpiry.Duration,
	)

	kakao := provider.NewKakao(cfg.Kakao.AdminKey, infra.ProviderClient())
	apple, err := provider.NewApple(
		cfg.Apple.ClientID,
		cfg.Apple.TeamID,
		cfg.Apple.KeyID,
		cfg.Apple.RedirectURI,
		infra.AppleKey(),
		infra.ProviderClient(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build apple adapter: %w", err)
	}
	google := provider.NewGoogle(cfg.Google.ClientIDs, infra.ProviderClient())

	authService := service.NewAuthService(
		repos.User,
		repos.Token,
		jwtManager,
		[]provider.Adapter{kakao, apple, google},
		cfg.Admin.UUID,
		cfg.Admin.PasswordHash,
	)
	messageService := service.NewMessageService(repos.User, repos.Message)
	searchService := service.NewSearchService(infra.Redis(), repos.Place, infra.Logger(), cfg.Security.SearchCacheTTL.Duration)
	rateLimiter := service.NewRateLimiter(infra.Redis(), cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration)
	healthChecker := NewHealthChecker(infra)

	authHandler := handler.NewAuthHandler(authService, jwtManager, kakao, apple, google)
	userHandler := handler.NewUserHandler(authService)
	messageHandler := handler.NewMessageHandler(messageService)
	searchHandler := handler.NewSearchHandler(authService, searchService)
	adminHandler := handler.NewAdminHandler(authService, infra.Redis(), infra.Logger(), cfg.Admin.UUID)

	router := gin.Default()
	router.Use(otelgin.Middleware("mapda-api"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))
	// Installed globally: every route is protected unless the config says
	// otherwise.
	router.Use(handler.AuthMiddleware(jwtManager, cfg.Auth))

	setupRoutes(router, authHandler, userHandler, messageHandler, searchHandler, adminHandler, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	messageHandler *handler.MessageHandler,
	searchHandler *handler.SearchHandler,
	adminHandler *handler.AdminHandler,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	login := router.Group("/login", handler.RateLimitMiddleware(rateLimiter))
	{
		login.POST("/kakao", authHandler.LoginKakao)
		login.POST("/apple", authHandler.LoginApple)
		login.POST("/google", authHandler.LoginGoogle)
	}

	router.POST("/auth/refresh", authHandler.Refresh)

	admin := router.Group("/admin")
	{
		admin.POST("/login", handler.RateLimitMiddleware(rateLimiter), adminHandler.Login)
		admin.DELETE("/flush-redis", adminHandler.FlushRedis)
	}

	api := router.Group("/api/v1")
	{
		api.DELETE("/unregister", authHandler.Unregister)
		api.POST("/message", messageHandler.Send)
		api.GET("/message_check", messageHandler.Check)
		api.GET("/search/place", searchHandler.SearchPlaces)

		userinfo := api.Group("/userinfo")
		{
			userinfo.POST("/register_complete", userHandler.RegisterComplete)
			userinfo.PATCH("/update_userinfo", userHandler.UpdateUserInfo)
			userinfo.GET("/inquire", userHandler.Inquire)
			userinfo.GET("/check_nickname", userHandler.CheckNickname)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
