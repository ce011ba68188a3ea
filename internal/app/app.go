package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/NicoGleichmann/shopWebsite/internal/config"
	"github.com/NicoGleichmann/shopWebsite/internal/database"
	"github.com/NicoGleichmann/shopWebsite/internal/http/middleware"
	"github.com/NicoGleichmann/shopWebsite/internal/observability"
	"github.com/NicoGleichmann/shopWebsite/internal/repository"
	"github.com/NicoGleichmann/shopWebsite/internal/security"
	"github.com/NicoGleichmann/shopWebsite/internal/service"
)

const serviceName = "shop-website-api"

// App owns the wired application: configuration, connections, services and
// the HTTP server.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	mongoClient *mongo.Client
	redisClient *redis.Client
	stopTracing func(context.Context) error
	server      *http.Server
}

// New loads configuration, connects to the backing stores and assembles the
// full service graph. The returned App is ready to Run.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	stopTracing, err := observability.SetupTracing(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	client, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	db := client.Database(cfg.MongoDB)

	var redisClient *redis.Client
	var limiter middleware.Limiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
		limiter = middleware.NewRedisFixedWindowLimiter(redisClient)
		logger.Info("rate limiting via redis")
	} else {
		limiter = middleware.NewLocalFixedWindowLimiter()
		logger.Info("rate limiting in-process; set REDIS_URL when running more than one replica")
	}

	var mailer service.Mailer
	if cfg.MailEnabled() {
		mailer = service.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFromName)
	} else {
		mailer = service.NewLogMailer(logger)
		logger.Warn("SMTP_HOST not set, outbound mail is logged instead of sent")
	}

	accounts := repository.NewAccountRepository(db)
	subscribers := repository.NewSubscriberRepository(db)
	products := repository.NewProductRepository(db)

	jwtMgr := security.NewJWTManager(cfg.JWTIssuer, cfg.JWTSecret, cfg.JWTTTL)

	authSvc := service.NewAuthService(accounts, mailer, jwtMgr, cfg.FrontendURL, logger)
	newsSvc := service.NewNewsletterService(subscribers, mailer, cfg.FrontendURL, cfg.UnsubscribeSecret, logger)
	catalogSvc := service.NewCatalogService(products)
	contactSvc := service.NewContactService(mailer, cfg.ContactInbox, logger)

	router := newRouter(routerDeps{
		cfg:        cfg,
		logger:     logger,
		jwt:        jwtMgr,
		limiter:    limiter,
		auth:       authSvc,
		newsletter: newsSvc,
		catalog:    catalogSvc,
		contact:    contactSvc,
		db:         client,
	})

	return &App{
		cfg:         cfg,
		logger:      logger,
		mongoClient: client,
		redisClient: redisClient,
		stopTracing: stopTracing,
		server: &http.Server{
			Addr:              ":" + cfg.HTTPPort,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}, nil
}

// Run serves HTTP until ctx is cancelled, then drains connections and closes
// the backing stores.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.server.Addr, "env", a.cfg.Env)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("disconnect mongodb: %w", err))
	}
	if err := a.stopTracing(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("flush traces: %w", err))
	}
	return errors.Join(errs...)
}

// EnsureIndexes creates the collection indexes the flows rely on, notably the
// unique email and verification token constraints.
func (a *App) EnsureIndexes(ctx context.Context) error {
	return database.EnsureIndexes(ctx, a.mongoClient.Database(a.cfg.MongoDB))
}

// SeedProducts loads the built-in catalog into the products collection.
func (a *App) SeedProducts(ctx context.Context) (int, error) {
	return database.SeedProducts(ctx, a.mongoClient.Database(a.cfg.MongoDB))
}

// Close releases connections without serving. Used by the one-shot
// subcommands.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.mongoClient.Disconnect(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.stopTracing(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
