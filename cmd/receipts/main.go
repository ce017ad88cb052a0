package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/magpress/receipts/internal/audit"
	"github.com/magpress/receipts/internal/auth"
	"github.com/magpress/receipts/internal/config"
	"github.com/magpress/receipts/internal/database"
	"github.com/magpress/receipts/internal/gateway"
	"github.com/magpress/receipts/internal/ratelimit"
	"github.com/magpress/receipts/internal/receipt"
	"github.com/magpress/receipts/internal/store/postgres"
	"github.com/magpress/receipts/internal/web"
	"github.com/magpress/receipts/internal/web/handlers"
	"github.com/magpress/receipts/internal/web/render"
	"github.com/magpress/receipts/migrations"
	"github.com/magpress/receipts/static"
	"github.com/magpress/receipts/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Database
	db, err := postgres.NewDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Migrations
	if err := database.RunMigrations(migrations.FS, cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Stores
	userStore := postgres.NewUserStore(db)
	sessionStore := postgres.NewSessionStore(db)
	sentEmailStore := postgres.NewSentEmailStore(db)

	// Services
	authService := auth.NewService(userStore, sessionStore, cfg.SessionMaxAge)
	if err := authService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		slog.Error("failed to provision admin user", "error", err)
		os.Exit(1)
	}

	// Email gateway: Brevo by default, plain SMTP when SMTP_HOST is set.
	var sender gateway.Sender
	var configured bool
	if cfg.SMTPEnabled {
		smtpClient := gateway.NewSMTPClient(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SenderEmail, cfg.SenderName)
		sender = smtpClient
		configured = smtpClient.Configured()
	} else {
		brevoClient := gateway.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoAPIURL, cfg.SenderEmail, cfg.SenderName)
		sender = brevoClient
		configured = brevoClient.Configured()
	}
	if !configured {
		slog.Warn("email gateway not configured; all sends will fail",
			"brevo_key_set", cfg.BrevoAPIKey != "",
			"sender_email_set", cfg.SenderEmail != "",
		)
	}

	dispatcher := receipt.NewDispatcher(sender, cfg.MagazineName, cfg.PurchaseAmount, cfg.SenderName)
	auditWriter := audit.NewWriter(sentEmailStore)

	// Rate limiters: one for password attempts, one for the JSON API.
	loginLimiter := ratelimit.NewLimiter(cfg.LoginRateRPS, cfg.LoginRateBurst)
	apiLimiter := ratelimit.NewLimiter(cfg.APIRateRPS, cfg.APIRateBurst)

	// Renderer
	renderer := render.NewRenderer(templates.FS)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, loginLimiter, renderer, cfg.SecureCookies)
	homeHandler := handlers.NewHomeHandler(renderer, cfg.SecureCookies)
	sendHandler := handlers.NewSendHandler(dispatcher, auditWriter, cfg.MaxCSVBytes, renderer, cfg.SecureCookies)
	logHandler := handlers.NewLogHandler(auditWriter, renderer, cfg.SecureCookies)
	apiHandler := handlers.NewAPIHandler(dispatcher, auditWriter, configured)

	// Router
	router := web.NewRouter(web.RouterDeps{
		AuthHandler: authHandler,
		HomeHandler: homeHandler,
		SendHandler: sendHandler,
		LogHandler:  logHandler,
		APIHandler:  apiHandler,
		AuthService: authService,
		APILimiter:  apiLimiter,
		StaticFS:    static.FS,
	})

	// Session cleanup goroutine
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := sessionStore.DeleteExpiredSessions(context.Background()); err != nil {
				slog.Error("failed to clean up expired sessions", "error", err)
			}
		}
	}()

	// Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("receipts starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
