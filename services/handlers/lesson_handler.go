package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/airmems/meme_api/dto"
	"github.com/airmems/meme_api/shared"
)

type LessonHandler struct {
	lessonSvc LessonServiceInterface
}

func NewLessonHandler(lessonSvc LessonServiceInterface) *LessonHandler {
	return &LessonHandler{
		lessonSvc: lessonSvc,
	}
}

// @Summary List Lessons
// @Description Get all generated lessons, newest first
// @Tags lessons
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.LessonListResponse}
// @Router /api/lessons [get]
func (h *LessonHandler) ListLessons(c *fiber.Ctx) error {
	lessons, err := h.lessonSvc.ListLessons()
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", lessons)
}

// @Summary List Saved Lessons
// @Description Get bookmarked lessons, newest save first
// @Tags lessons
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.SavedLessonListResponse}
// @Router /api/lessons/saved [get]
func (h *LessonHandler) ListSavedLessons(c *fiber.Ctx) error {
	saved, err := h.lessonSvc.ListSavedLessons()
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", saved)
}

// @Summary Get Lesson
// @Description Get one lesson by id
// @Tags lessons
// @Accept json
// @Produce json
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} shared.Response{data=dto.LessonResponse}
// @Router /api/lessons/{lessonId} [get]
func (h *LessonHandler) GetLesson(c *fiber.Ctx) error {
	lessonID := c.Params("lessonId")

	lesson, err := h.lessonSvc.GetLesson(lessonID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", lesson)
}

// @Summary Delete Lesson
// @Description Delete one lesson by id
// @Tags lessons
// @Accept json
// @Produce json
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} shared.Response
// @Router /api/lessons/{lessonId} [delete]
func (h *LessonHandler) DeleteLesson(c *fiber.Ctx) error {
	lessonID := c.Params("lessonId")

	if err := h.lessonSvc.DeleteLesson(lessonID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", nil)
}

// @Summary Save Lesson
// @Description Bookmark a generated lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Param lessonId path string true "Lesson ID"
// @Success 201 {object} shared.Response
// @Router /api/lessons/{lessonId}/save [post]
func (h *LessonHandler) SaveLesson(c *fiber.Ctx) error {
	lessonID := c.Params("lessonId")

	if err := h.lessonSvc.SaveLesson(lessonID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", nil)
}

// @Summary Submit Lesson Answers
// @Description Score submitted answers for a persisted lesson and record progress
// @Tags lessons
// @Accept json
// @Produce json
// @Param lessonId path string true "Lesson ID"
// @Param request body dto.SubmitAnswersRequest true "Answers by question id"
// @Success 200 {object} shared.Response{data=dto.SubmitAnswersResponse}
// @Router /api/lessons/{lessonId}/answers [post]
func (h *LessonHandler) SubmitAnswers(c *fiber.Ctx) error {
	lessonID := c.Params("lessonId")

	var req dto.SubmitAnswersRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(nil, "Invalid request body")
	}
	if err := dto.GetValidator().Struct(req); err != nil {
		return shared.NewBadRequestError(dto.FormatValidationErrors(err), "Validation failed")
	}

	result, err := h.lessonSvc.SubmitAnswers(lessonID, req.Answers)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", result)
}

// @Summary Get Lesson Progress
// @Description Get the recorded answers and score for a lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} shared.Response{data=dto.ProgressResponse}
// @Router /api/progress/{lessonId} [get]
func (h *LessonHandler) GetProgress(c *fiber.Ctx) error {
	lessonID := c.Params("lessonId")

	progress, err := h.lessonSvc.GetProgress(lessonID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", progress)
}

// @Summary Get Account Stats
// @Description Aggregate local learning statistics
// @Tags account
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.AccountStatsResponse}
// @Router /api/stats [get]
func (h *LessonHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.lessonSvc.GetStats()
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", stats)
}

// @Summary Clear User Data
// @Description Delete all lessons, progress and saved markers; cached memes survive
// @Tags account
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response
// @Router /api/data [delete]
func (h *LessonHandler) ClearData(c *fiber.Ctx) error {
	if err := h.lessonSvc.ClearData(); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", nil)
}
