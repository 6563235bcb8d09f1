package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/gofiber/swagger"
	"github.com/rs/zerolog/log"

	_ "github.com/airmems/meme_api/docs"
	"github.com/airmems/meme_api/services/handlers"
	"github.com/airmems/meme_api/shared"
)

type HttpService struct {
	context.DefaultService

	feedSvc   *FeedService
	lessonSvc *LessonService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.feedSvc = svc.Service(FEED_SVC).(*FeedService)
	svc.lessonSvc = svc.Service(LESSON_SVC).(*LessonService)

	app := fiber.New(fiber.Config{
		AppName:      SERVICE_NAME,
		ErrorHandler: svc.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(MonitoringMiddleware())

	feedHandler := handlers.NewFeedHandler(svc.feedSvc)
	lessonHandler := handlers.NewLessonHandler(svc.lessonSvc)
	sessionHandler := handlers.NewSessionHandler(svc.lessonSvc)
	proxyHandler := handlers.NewProxyHandler(svc.lessonSvc)

	app.Get("/swagger/*", fiberSwagger.HandlerDefault)

	api := app.Group("/api")

	// Proxy contract: bare JSON bodies, {error, details?} on failure.
	api.Get("/health", proxyHandler.Health)
	api.Post("/explain-meme", proxyHandler.ExplainMeme)
	api.Post("/generate-lesson", proxyHandler.GenerateLesson)

	api.Get("/memes", feedHandler.GetFeed)
	api.Get("/memes/:memeId", feedHandler.GetMeme)

	api.Post("/sessions", sessionHandler.StartSession)
	api.Get("/sessions/:sessionId", sessionHandler.GetSession)
	api.Post("/sessions/:sessionId/explanation", sessionHandler.RequestExplanation)
	api.Post("/sessions/:sessionId/skip-explanation", sessionHandler.SkipExplanation)
	api.Post("/sessions/:sessionId/level", sessionHandler.SelectLevel)
	api.Post("/sessions/:sessionId/answers", sessionHandler.SubmitAnswers)

	api.Get("/lessons", lessonHandler.ListLessons)
	api.Get("/lessons/saved", lessonHandler.ListSavedLessons)
	api.Get("/lessons/:lessonId", lessonHandler.GetLesson)
	api.Delete("/lessons/:lessonId", lessonHandler.DeleteLesson)
	api.Post("/lessons/:lessonId/save", lessonHandler.SaveLesson)
	api.Post("/lessons/:lessonId/answers", lessonHandler.SubmitAnswers)

	api.Get("/progress/:lessonId", lessonHandler.GetProgress)
	api.Get("/stats", lessonHandler.GetStats)
	api.Delete("/data", lessonHandler.ClearData)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	svc.server = app

	log.Info().Int("port", svc.port).Msg("HTTP server starting")
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// handleError renders AppError values as {error, details?} with their status
// and hides everything else behind a 500.
func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.RawJSON(c, appErr.StatusCode, appErr)
	}

	if e, ok := err.(*fiber.Error); ok {
		return shared.RawJSON(c, e.Code, fiber.Map{"error": e.Message})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
	return shared.RawJSON(c, fiber.StatusInternalServerError, fiber.Map{
		"error":   "Internal Server Error",
		"details": err.Error(),
	})
}
