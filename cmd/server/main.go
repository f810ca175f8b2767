package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/smartshuttle/shuttle/internal/api"
	"github.com/smartshuttle/shuttle/internal/auth"
	"github.com/smartshuttle/shuttle/internal/certs"
	"github.com/smartshuttle/shuttle/internal/config"
	"github.com/smartshuttle/shuttle/internal/onboarding"
	"github.com/smartshuttle/shuttle/internal/passenger"
	"github.com/smartshuttle/shuttle/internal/storage/sqlite"
	"github.com/smartshuttle/shuttle/internal/theme"
	"github.com/smartshuttle/shuttle/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// certWarnWindow is how close to expiry a TLS certificate triggers a warning.
const certWarnWindow = 14 * 24 * time.Hour

var rootCmd = &cobra.Command{
	Use:           "shuttle",
	Short:         "SmartShuttle passenger server",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return utils.NewLogger(utils.LoggerOptions{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	if err := sqlite.Migrate(cfg.DBPath); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("migrations applied", zap.String("db", cfg.DBPath))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	secret, err := cfg.Secret()
	if err != nil {
		return err
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}()

	tokens, err := auth.NewTokenIssuer(secret, cfg.JWTExpiresIn.Duration())
	if err != nil {
		return err
	}
	authSvc, err := auth.NewService(store, tokens, logger.Named("auth"))
	if err != nil {
		return err
	}
	catalog, err := passenger.DefaultCatalog()
	if err != nil {
		return err
	}
	passengerSvc, err := passenger.NewService(catalog, store, store, logger.Named("passenger"))
	if err != nil {
		return err
	}
	registry := onboarding.NewRegistry(onboarding.DefaultSteps(), onboarding.Options{
		Transition:     cfg.Onboarding.Transition,
		SwipeThreshold: cfg.Onboarding.SwipeThreshold,
	}, cfg.Onboarding.SessionTTL, logger.Named("onboarding"))
	registry.SetMaxSessions(cfg.Onboarding.MaxSessions)
	defer registry.Close()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	router, err := api.NewRouter(api.Deps{
		Logger:     logger.Named("http"),
		Auth:       authSvc,
		Users:      store,
		Passenger:  passengerSvc,
		Onboarding: registry,
		Theme:      theme.Default(),
		DB:         store,
		Secure:     cfg.IsProduction(),
		Location:   loc,
	})
	if err != nil {
		return err
	}

	if cfg.TLSEnabled() {
		checkCertificate(logger, cfg.TLSCert)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go registry.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.Bool("tls", cfg.TLSEnabled()),
			zap.Bool("production", cfg.IsProduction()),
		)
		if cfg.TLSEnabled() {
			errCh <- srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func checkCertificate(logger *zap.Logger, certFile string) {
	st, err := certs.NewCertManager(certFile).Check(certWarnWindow)
	if err != nil {
		logger.Warn("could not inspect TLS certificate", zap.String("cert", certFile), zap.Error(err))
		return
	}
	fields := []zap.Field{
		zap.String("subject", st.Subject),
		zap.Time("not_after", st.NotAfter),
	}
	switch {
	case st.Expired:
		logger.Warn("TLS certificate has expired", fields...)
	case st.ExpiresSoon:
		logger.Warn("TLS certificate expires soon", fields...)
	default:
		logger.Info("TLS certificate loaded", fields...)
	}
}
