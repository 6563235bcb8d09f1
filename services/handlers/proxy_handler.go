package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/airmems/meme_api/dto"
	"github.com/airmems/meme_api/shared"
)

// ProxyHandler serves the AirMems proxy contract: bare JSON bodies,
// camelCase fields, errors as {error, details?}. Clients built against the
// browser app keep working unchanged.
type ProxyHandler struct {
	proxySvc ProxyServiceInterface
}

func NewProxyHandler(proxySvc ProxyServiceInterface) *ProxyHandler {
	return &ProxyHandler{
		proxySvc: proxySvc,
	}
}

// @Summary Health
// @Description Service health check
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/health [get]
func (h *ProxyHandler) Health(c *fiber.Ctx) error {
	return shared.RawJSON(c, fiber.StatusOK, fiber.Map{
		"status":  "ok",
		"service": "AirMems API",
	})
}

// @Summary Explain Meme
// @Description Generate an explanation of a meme in the chosen language
// @Tags generation
// @Accept json
// @Produce json
// @Param request body dto.ExplainMemeRequest true "Meme and target language"
// @Success 200 {object} dto.ExplanationResponse
// @Failure 500 {object} shared.AppError
// @Router /api/explain-meme [post]
func (h *ProxyHandler) ExplainMeme(c *fiber.Ctx) error {
	var req dto.ExplainMemeRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(nil, "Invalid request body")
	}
	if err := dto.GetValidator().Struct(req); err != nil {
		return shared.NewBadRequestError(dto.FormatValidationErrors(err), "Validation failed")
	}

	explanation, err := h.proxySvc.ExplainMemeDirect(c.Context(), req)
	if err != nil {
		return err
	}

	return shared.RawJSON(c, fiber.StatusOK, explanation)
}

// @Summary Generate Lesson
// @Description Generate a vocabulary lesson with quiz questions for a meme
// @Tags generation
// @Accept json
// @Produce json
// @Param request body dto.GenerateLessonRequest true "Meme and proficiency level"
// @Success 200 {object} dto.LessonResponse
// @Failure 500 {object} shared.AppError
// @Router /api/generate-lesson [post]
func (h *ProxyHandler) GenerateLesson(c *fiber.Ctx) error {
	var req dto.GenerateLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(nil, "Invalid request body")
	}
	if err := dto.GetValidator().Struct(req); err != nil {
		return shared.NewBadRequestError(dto.FormatValidationErrors(err), "Validation failed")
	}

	lesson, err := h.proxySvc.GenerateLessonDirect(c.Context(), req)
	if err != nil {
		return err
	}

	return shared.RawJSON(c, fiber.StatusOK, lesson)
}
