package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/airmems/meme_api/dto"
	"github.com/airmems/meme_api/shared"
)

type SessionHandler struct {
	sessionSvc SessionServiceInterface
}

func NewSessionHandler(sessionSvc SessionServiceInterface) *SessionHandler {
	return &SessionHandler{
		sessionSvc: sessionSvc,
	}
}

// @Summary Start Lesson Workflow
// @Description Open a lesson workflow session for a cached meme
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body dto.StartSessionRequest true "Meme to learn from"
// @Success 201 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/sessions [post]
func (h *SessionHandler) StartSession(c *fiber.Ctx) error {
	var req dto.StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(nil, "Invalid request body")
	}
	if err := dto.GetValidator().Struct(req); err != nil {
		return shared.NewBadRequestError(dto.FormatValidationErrors(err), "Validation failed")
	}

	session, err := h.sessionSvc.StartWorkflow(req.MemeID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", session)
}

// @Summary Get Workflow Session
// @Description Get the current state of a lesson workflow session
// @Tags sessions
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/sessions/{sessionId} [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.sessionSvc.GetWorkflow(c.Params("sessionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// @Summary Request Meme Explanation
// @Description Generate an explanation of the session's meme in a chosen language
// @Tags sessions
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param request body dto.RequestExplanationRequest true "Target language"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/sessions/{sessionId}/explanation [post]
func (h *SessionHandler) RequestExplanation(c *fiber.Ctx) error {
	var req dto.RequestExplanationRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(nil, "Invalid request body")
	}
	if err := dto.GetValidator().Struct(req); err != nil {
		return shared.NewBadRequestError(dto.FormatValidationErrors(err), "Validation failed")
	}

	session, err := h.sessionSvc.RequestWorkflowExplanation(c.Context(), c.Params("sessionId"), req.Language)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// @Summary Skip Explanation Step
// @Description Advance the workflow past the optional explanation step
// @Tags sessions
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/sessions/{sessionId}/skip-explanation [post]
func (h *SessionHandler) SkipExplanation(c *fiber.Ctx) error {
	session, err := h.sessionSvc.SkipWorkflowExplanation(c.Params("sessionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// @Summary Select Proficiency Level
// @Description Select a level and generate the lesson for the session's meme
// @Tags sessions
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param request body dto.SelectLevelRequest true "Proficiency level"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/sessions/{sessionId}/level [post]
func (h *SessionHandler) SelectLevel(c *fiber.Ctx) error {
	var req dto.SelectLevelRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(nil, "Invalid request body")
	}
	if err := dto.GetValidator().Struct(req); err != nil {
		return shared.NewBadRequestError(dto.FormatValidationErrors(err), "Validation failed")
	}

	session, err := h.sessionSvc.SelectWorkflowLevel(c.Context(), c.Params("sessionId"), req.Level)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// @Summary Submit Session Answers
// @Description Score the answers against the session's ready lesson
// @Tags sessions
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param request body dto.SubmitAnswersRequest true "Answers by question id"
// @Success 200 {object} shared.Response{data=dto.SubmitAnswersResponse}
// @Router /api/sessions/{sessionId}/answers [post]
func (h *SessionHandler) SubmitAnswers(c *fiber.Ctx) error {
	var req dto.SubmitAnswersRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(nil, "Invalid request body")
	}
	if err := dto.GetValidator().Struct(req); err != nil {
		return shared.NewBadRequestError(dto.FormatValidationErrors(err), "Validation failed")
	}

	result, err := h.sessionSvc.SubmitSessionAnswers(c.Params("sessionId"), req.Answers)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", result)
}
