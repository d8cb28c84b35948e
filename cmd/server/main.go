// @title           Legal Practice API
// @version         1.0
// @description     API for a legal practice: advocates run cases, delegate tasks to juniors, keep evidence, bill clients and take appointments.
// @contact.name    Aldo Rifki Putra
// @contact.email   aldoetobex@gmail.com
// @BasePath        /api
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Format: Bearer <token>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	// Docs
	_ "github.com/aldoetobex/legal-practice-backend/docs"
	"github.com/aldoetobex/legal-practice-backend/internal/auth"
	"github.com/aldoetobex/legal-practice-backend/internal/payments"
	"github.com/aldoetobex/legal-practice-backend/internal/razorpay"
	"github.com/aldoetobex/legal-practice-backend/internal/server"
	"github.com/aldoetobex/legal-practice-backend/internal/storage"
	"github.com/aldoetobex/legal-practice-backend/pkg/config"
	"github.com/aldoetobex/legal-practice-backend/pkg/database"
	"github.com/aldoetobex/legal-practice-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal().Err(err).Msg("config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}

	deps := server.Deps{
		DB:           db,
		Tokens:       auth.NewTokens(cfg.JWTSecret),
		Log:          log,
		ClientOrigin: cfg.ClientOrigin,
		SecureCookie: cfg.IsProduction(),
	}

	// Evidence storage: Supabase when configured, local disk otherwise
	if cfg.Supabase.URL != "" {
		deps.Store = storage.NewSupabase(cfg.Supabase.URL, cfg.Supabase.ServiceKey, cfg.Supabase.Bucket)
		log.Info().Str("bucket", cfg.Supabase.Bucket).Msg("evidence stored in supabase")
	} else {
		local, err := storage.NewLocal(cfg.UploadDir)
		if err != nil {
			log.Fatal().Err(err).Msg("upload dir")
		}
		deps.Store = local
		deps.StaticDir = local.Dir()
		log.Info().Str("dir", local.Dir()).Msg("evidence stored on disk")
	}

	deps.Gateway = gateway(cfg, log)

	app := server.New(deps)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server running")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// gateway returns nil (not a typed nil) when online payments are off.
func gateway(cfg *config.Config, log zerolog.Logger) payments.Gateway {
	if !cfg.Razorpay.Enabled {
		log.Warn().Msg("payment gateway disabled")
		return nil
	}
	return razorpay.New(cfg.Razorpay.BaseURL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
}
