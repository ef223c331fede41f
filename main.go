package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"farmwise/config"
	"farmwise/models"
	"farmwise/routes"
	"farmwise/services"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_PRETTY") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg := config.Load()
	if cfg.DBDSN == "" || cfg.JWTSecret == "" {
		log.Fatal().Msg("DB_DSN and JWT_SECRET must be set")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("creating upload dir failed")
	}

	db, err := config.InitDB(cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to database failed")
	}
	if err := models.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	hub := services.NewHub()
	go hub.Run()
	defer hub.Stop()

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	chat := services.NewChatService(db, hub, cfg.HistoryPageSize)
	conversations := services.NewConversationService(db)

	r := routes.RegisterRoutes(routes.Deps{
		DB:            db,
		Tokens:        tokens,
		Hub:           hub,
		Chat:          chat,
		Conversations: conversations,
		Cfg:           cfg,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Msg("farmwise server listening")
	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}
