package main

import (
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/certifyhq/certify/internal/api"
	"github.com/certifyhq/certify/internal/certificate"
	"github.com/certifyhq/certify/internal/config"
	"github.com/certifyhq/certify/internal/fonts"
	"github.com/certifyhq/certify/internal/mailer"
	"github.com/certifyhq/certify/internal/util"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}
	if err := util.EnsureDir(cfg.FontsDir); err != nil {
		log.Fatal("prepare fonts directory", zap.Error(err))
	}

	provider := fonts.New(cfg.FontsDir, log)
	sender := mailer.NewSMTP(cfg.SMTP, log)
	app := api.New(log, certificate.NewRenderer(provider), provider, sender, cfg.SMTP)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(api.RequestLogger(log))
	app.RegisterRoutes(r)

	log.Info("starting server",
		zap.String("addr", ":"+cfg.Port),
		zap.String("fonts_dir", cfg.FontsDir),
		zap.Bool("email_configured", cfg.SMTP.Configured()),
	)
	if err := r.Run(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"}
	cfg.AllowCredentials = true
	if slices.Contains(origins, "*") {
		// cors refuses AllowAllOrigins together with credentials, so wave
		// every origin through the callback instead.
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
