package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/airmems/meme_api/shared"
)

type FeedHandler struct {
	feedSvc FeedServiceInterface
}

func NewFeedHandler(feedSvc FeedServiceInterface) *FeedHandler {
	return &FeedHandler{
		feedSvc: feedSvc,
	}
}

// @Summary Get Meme Feed
// @Description Get a filtered, shuffled page of memes; never empty on success
// @Tags feed
// @Accept json
// @Produce json
// @Param page query int false "Page index, defaults to 0"
// @Success 200 {object} shared.Response{data=dto.MemeFeedResponse}
// @Router /api/memes [get]
func (h *FeedHandler) GetFeed(c *fiber.Ctx) error {
	page, err := strconv.Atoi(c.Query("page", "0"))
	if err != nil || page < 0 {
		return shared.NewBadRequestError(nil, "page must be a non-negative integer")
	}

	feed, err := h.feedSvc.GetFeedPage(c.Context(), page)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", feed)
}

// @Summary Get Meme
// @Description Get a single cached meme by id
// @Tags feed
// @Accept json
// @Produce json
// @Param memeId path string true "Meme ID"
// @Success 200 {object} shared.Response{data=dto.MemeResponse}
// @Router /api/memes/{memeId} [get]
func (h *FeedHandler) GetMeme(c *fiber.Ctx) error {
	memeID := c.Params("memeId")

	meme, err := h.feedSvc.GetMemeByID(memeID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", meme)
}
