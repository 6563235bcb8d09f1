package main

import (
	"github.com/airmems/meme_api/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// @title AirMems API
// @version 1.0
// @description Meme-based language learning backend: meme feed, AI lesson generation and progress tracking.
// @BasePath /api
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	ctx, err := context.NewCtx(
		&services.MonitoringService{},
		&services.SqliteService{},
		&services.RedisService{},
		&services.MediaService{},
		&services.AIService{},
		&services.FeedService{},
		&services.LessonService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build service context")
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Service runtime exited")
		return
	}
}
