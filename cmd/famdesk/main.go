package main

import (
	"context"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/famdesk/internal/config"
	"github.com/dukerupert/famdesk/internal/database"
	"github.com/dukerupert/famdesk/internal/logging"
	"github.com/dukerupert/famdesk/internal/secret"
	"github.com/dukerupert/famdesk/internal/server"
	"github.com/dukerupert/famdesk/internal/store"
	"github.com/dukerupert/famdesk/internal/visitor"
	ws "github.com/dukerupert/famdesk/internal/websocket"
	"github.com/dukerupert/famdesk/web"
)

const cookieSaltKey = "cookie_salt"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.GeneratedSecret {
		logger.Warn("FAMDESK_SECRET not set; backend sessions will not survive a restart")
	}
	if cfg.GeneratedCSRFKey {
		logger.Warn("FAMDESK_CSRF_KEY not set; using a random key for this run")
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	settings := store.NewSettingsStore(db)
	saltHex, err := settings.GetOrCreate(cookieSaltKey, func() (string, error) {
		salt, err := secret.GenerateSalt()
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(salt), nil
	})
	if err != nil {
		slog.Error("failed to load cookie salt", "error", err)
		os.Exit(1)
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		slog.Error("stored cookie salt is corrupt", "error", err)
		os.Exit(1)
	}
	sealer, err := secret.NewSealer(cfg.Secret, salt)
	if err != nil {
		slog.Error("failed to set up cookie sealing", "error", err)
		os.Exit(1)
	}

	hub := ws.NewHub(logger.With("component", "websocket"))
	registry := visitor.NewRegistry(
		store.NewVisitorStore(db),
		store.NewCookieStore(db, sealer, logger.With("component", "cookies")),
		visitor.Config{
			APIURL:      cfg.APIURL,
			APITimeout:  cfg.APITimeout,
			IdleTimeout: cfg.VisitorIdle,
			OnCreate:    server.ForwardNavigation(hub),
		},
		logger.With("component", "visitor"),
	)

	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		slog.Error("failed to load static assets", "error", err)
		os.Exit(1)
	}
	srv, err := server.New(server.Config{
		CSRFKey:        cfg.CSRFKey,
		SecureCookies:  cfg.SecureCookies,
		TrustedOrigins: cfg.TrustedOrigins,
	}, registry, hub, web.Templates, static, logger)
	if err != nil {
		slog.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Login waits on the backend twice; leave room beyond its timeout.
		WriteTimeout: 2*cfg.APITimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Background cleanup goroutine
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				registry.Cleanup(now)
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("famdesk starting", "addr", ":"+cfg.Port, "api", cfg.APIURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	cleanupCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
