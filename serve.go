package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"roamly/api/config"
	"roamly/api/content"
	"roamly/api/database"
	"roamly/api/handlers"
	"roamly/api/routes"
	"roamly/api/session"
	"roamly/api/storage"
	"roamly/api/store"
	"roamly/api/utils"
)

const (
	shutdownTimeout = 5 * time.Second
	sweepInterval   = 10 * time.Minute
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a.cfg, a.logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	pg, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("initialize PostgreSQL: %w", err)
	}
	defer pg.Close()

	// Left as a nil interface when ClickHouse is off so handlers and the navigator see "disabled".
	var (
		analytics handlers.AnalyticsRepository
		recorder  routes.ViewRecorder
	)
	if cfg.ClickHouse.Enabled() {
		ch, err := database.NewClickHouseDB(ctx, cfg.ClickHouse, logger)
		if err != nil {
			return fmt.Errorf("initialize ClickHouse: %w", err)
		}
		defer ch.Close()
		if err := ch.Migrate(ctx); err != nil {
			return err
		}
		s := store.NewAnalyticsStore(ch, logger)
		analytics, recorder = s, s
	} else {
		logger.Warn("CLICKHOUSE_HOST not set, analytics disabled")
	}

	uploader, closeUploader, err := newUploader(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeUploader()

	var (
		admins   = store.NewAdminStore(pg.DB)
		posts    = store.NewPostStore(pg.DB)
		products = store.NewProductStore(pg.DB)
		gallery  = store.NewGalleryStore(pg.DB)
		orders   = store.NewOrderStore(pg.DB)
		carts    = store.NewCartStore(pg.DB)
	)

	visitors := session.NewRegistry(carts, orders, cfg.CheckoutClearDelay, logger)
	defer visitors.Close()
	go visitors.Run(ctx, sweepInterval, cfg.VisitorIdleTTL)

	tokens, err := newTokenIssuer(cfg, logger)
	if err != nil {
		return err
	}

	srv := &handlers.Server{
		Auth:         handlers.NewAuthHandlers(admins, tokens, cfg.CookieSecure, logger),
		Navigation:   handlers.NewNavigationHandlers(routes.NewNavigator(posts, recorder, logger), visitors),
		Cart:         handlers.NewCartHandlers(products, visitors, logger),
		Checkout:     handlers.NewCheckoutHandlers(visitors, uploader, logger),
		Content:      handlers.NewContentHandlers(posts, products, gallery, content.NewRenderer(), logger),
		Admin:        handlers.NewAdminHandlers(posts, products, gallery, orders, uploader, logger),
		Analytics:    handlers.NewAnalyticsHandlers(analytics, logger),
		Tokens:       tokens,
		FEOrigin:     cfg.FEOrigin,
		CookieSecure: cfg.CookieSecure,
		Logger:       logger,
	}
	if cfg.UploadBackend == config.UploadLocal {
		srv.UploadDir = cfg.UploadDir
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server starting", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exiting")
	return nil
}

func newUploader(ctx context.Context, cfg *config.Config) (storage.Uploader, func(), error) {
	switch cfg.UploadBackend {
	case config.UploadGCS:
		u, err := storage.NewGCSUploader(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, nil, err
		}
		return u, func() { _ = u.Close() }, nil
	default:
		u, err := storage.NewLocalUploader(cfg.UploadDir, cfg.UploadBaseURL)
		if err != nil {
			return nil, nil, err
		}
		return u, func() {}, nil
	}
}

// newTokenIssuer falls back to a random per-process secret outside release
// mode, so admin sessions end when the dev server restarts.
func newTokenIssuer(cfg *config.Config, logger *zap.Logger) (*utils.TokenIssuer, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		var err error
		if secret, err = utils.GenerateSessionID(); err != nil {
			return nil, fmt.Errorf("generate development jwt secret: %w", err)
		}
		logger.Warn("JWT_SECRET_KEY not set, using an ephemeral secret")
	}
	return utils.NewTokenIssuer(secret, cfg.JWTTTL)
}
