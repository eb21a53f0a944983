package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/PYROP3/pets-io/config"
	"github.com/PYROP3/pets-io/db"
	"github.com/PYROP3/pets-io/internal/account/handler"
	repo "github.com/PYROP3/pets-io/internal/account/repository/postgres"
	"github.com/PYROP3/pets-io/internal/account/service"
	"github.com/PYROP3/pets-io/internal/errcatalog"
	"github.com/PYROP3/pets-io/internal/mailer"
	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg := config.Load()

	level := slog.LevelInfo
	if cfg.Env == "development" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx := context.Background()

	if err := db.RunMigrations(cfg.DBURL); err != nil {
		slog.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbPool.Close()

	catalog, err := errcatalog.Load(cfg.DefaultLocale)
	if err != nil {
		slog.Error("failed to load error catalog", slog.Any("error", err))
		os.Exit(1)
	}

	mail, err := mailer.NewSMTPMailer(mailer.Config{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		SourceEmail: cfg.SourceEmail,
		ServerURL:   cfg.ServerURL,
	})
	if err != nil {
		slog.Error("failed to create mailer", slog.Any("error", err))
		os.Exit(1)
	}

	accountRepo := repo.NewPostgresRepository(dbPool)
	authService := service.NewAuthService(accountRepo, accountRepo, service.NewHexTokenService(), service.NewCredentialHasher(cfg.HashingSecret))
	accountHandler := handler.NewAccountHandler(authService, catalog, mail)

	app := fiber.New()
	handler.RegisterRoutes(app, accountHandler)

	slog.Info("starting server", slog.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
