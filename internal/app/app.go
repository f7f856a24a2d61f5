package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/get30seconds/auth-api/internal/config"
	"github.com/get30seconds/auth-api/internal/handler"
	"github.com/get30seconds/auth-api/internal/mailer"
	"github.com/get30seconds/auth-api/internal/repository"
	"github.com/get30seconds/auth-api/internal/service"
	"github.com/get30seconds/auth-api/internal/social"
	"github.com/get30seconds/auth-api/internal/utils"
	"github.com/get30seconds/auth-api/pkg/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	shutdownTimeout      = 5 * time.Second
	tokenCleanupInterval = time.Hour
)

type App struct {
	infra     Infrastructure
	config    *config.Config
	router    *gin.Engine
	server    *http.Server
	tokenRepo repository.TokenRepository
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry.Duration,
	)

	revocationCache := service.NewTokenRevocationCache(infra.Redis())
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	endpoints := social.DefaultEndpoints()
	if cfg.OAuth.GoogleUserinfoURL != "" {
		endpoints.Google = cfg.OAuth.GoogleUserinfoURL
	}
	if cfg.OAuth.FacebookUserinfoURL != "" {
		endpoints.Facebook = cfg.OAuth.FacebookUserinfoURL
	}
	verifier := social.NewHTTPVerifier(endpoints)

	smtpMailer := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	authService := service.NewAuthService(
		repos.User,
		repos.Token,
		jwtManager,
		revocationCache,
		verifier,
		smtpMailer,
		cfg.Security.BCryptCost,
		cfg.Security.ResetCodeTTL.Duration,
	)

	authHandler := handler.NewAuthHandler(authService)

	router := gin.Default()
	router.Use(otelgin.Middleware("auth-api"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, authService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:     infra,
		config:    cfg,
		router:    router,
		server:    srv,
		tokenRepo: repos.Token,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	api := router.Group("/api")
	{
		api.POST("/register",
			handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
			authHandler.Register,
		)
		api.POST("/login",
			handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
			authHandler.Login,
		)
		api.POST("/social_login", authHandler.SocialLogin)

		password := api.Group("/password")
		{
			password.POST("/forgot", authHandler.ForgotPassword)
			password.POST("/check_code", authHandler.CheckResetCode)
			password.POST("/reset", authHandler.ResetPassword)
		}

		api.POST("/logout", handler.AuthMiddleware(authService), authHandler.Logout)
		api.GET("/users/current", handler.AuthMiddleware(authService), authHandler.CurrentUser)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go a.cleanupExpiredTokens(ctx)

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

// cleanupExpiredTokens periodically removes access token rows whose
// expiry has passed. Expired tokens are already rejected at validation
// time; this only keeps the table from growing without bound.
func (a *App) cleanupExpiredTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.tokenRepo.DeleteExpired(ctx); err != nil {
				a.infra.Logger().Error("Expired token cleanup failed", zap.Error(err))
			}
		}
	}
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
