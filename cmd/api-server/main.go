package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mangashelf/internal/auth"
	"mangashelf/internal/catalog"
	"mangashelf/internal/logging"
	"mangashelf/internal/records"
	synchub "mangashelf/internal/sync"
	"mangashelf/pkg/config"
	"mangashelf/pkg/database"
)

func main() {
	configPath := flag.String("config", os.Getenv("MANGASHELF_CONFIG"), "path to a .yaml or .toml config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "api-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return err
	}
	defer logCloser.Close()

	dbCfg := database.Config{Path: cfg.Database.Path, BusyTimeout: cfg.Database.BusyTimeout.Duration}
	db, err := database.Open(dbCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("db migrate failed: %w", err)
	}

	hub := synchub.NewHub(logger)
	metrics := catalog.NewMetrics()
	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout.Duration, metrics)

	router, err := newRouter(cfg, logger, db, hub, catalogClient)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var tcpSrv *synchub.Server
	if cfg.Sync.TCPAddr != "" {
		tcpSrv = synchub.NewServer(cfg.Sync.TCPAddr, hub)
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	if tcpSrv != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tcpSrv.Run(); err != nil {
				errCh <- fmt.Errorf("tcp sync: %w", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP API server listening", "addr", cfg.Server.Addr, "db", cfg.Database.Path, "auth", cfg.AuthEnabled())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
	if tcpSrv != nil {
		if err := tcpSrv.Close(); err != nil {
			logger.Error("tcp shutdown error", "error", err)
		}
	}
	hub.CloseAll()

	wg.Wait()
	logger.Info("servers stopped")
	return runErr
}

func newRouter(cfg *config.Config, logger *slog.Logger, db *sql.DB, hub *synchub.Hub, catalogClient *catalog.Client) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery(), logging.Middleware(logger))

	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	router.GET("/ws", synchub.WSHandler(hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	if catalogClient.Metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(catalogClient.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")

	catalog.NewHandler(catalogClient, logger).RegisterRoutes(api)

	recordHandler := records.NewHandler(records.NewRepo(db), catalogClient, hub, logger)
	recordHandler.RegisterPublicRoutes(api)

	protected := router.Group("/api")
	if cfg.AuthEnabled() {
		tokens := auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL.Duration)
		protected.Use(auth.AuthMiddleware(tokens))
	}
	recordHandler.RegisterProtectedRoutes(protected)

	return router, nil
}
