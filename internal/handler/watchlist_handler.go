package handler

import (
	"github.com/gofiber/fiber/v3"

	"watchlist-gateway/internal/models"
	"watchlist-gateway/internal/service"
)

// WatchListHandler translates HTTP requests into gateway operations. Gateway
// results are returned as-is in the uniform envelope: the envelope, not the
// HTTP status, carries success or failure.
type WatchListHandler struct {
	gw *service.WatchListGateway
}

// NewWatchListHandler creates a new WatchListHandler.
func NewWatchListHandler(gw *service.WatchListGateway) *WatchListHandler {
	return &WatchListHandler{gw: gw}
}

// ErrorResponse is the standard error response format for transport-level
// failures (malformed bodies and the like).
type ErrorResponse struct {
	Error string `json:"error"`
}

// insertItemRequest is the write-path body; media_type arrives as raw text
// and is parsed before it becomes a MediaType.
type insertItemRequest struct {
	MediaType       string `json:"media_type"`
	Name            string `json:"name"`
	Rating          int    `json:"rating"`
	WouldWatchAgain bool   `json:"would_watch_again"`
}

type deleteItemsRequest struct {
	IDs []int `json:"ids"`
}

// Health returns service health status.
func (h *WatchListHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "watchlist-gateway",
	})
}

// Login authenticates against the database with end-user credentials.
func (h *WatchListHandler) Login(c fiber.Ctx) error {
	var creds models.Credentials
	if err := c.Bind().JSON(&creds); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	return c.JSON(h.gw.Authenticate(c.Context(), creds))
}

// Logout closes the session's pool and clears the authenticated flag.
func (h *WatchListHandler) Logout(c fiber.Ctx) error {
	return c.JSON(h.gw.Logout(c.Context()))
}

// ListItems returns the stored watch list.
func (h *WatchListHandler) ListItems(c fiber.Ctx) error {
	return c.JSON(h.gw.List(c.Context()))
}

// InsertItem stores a new watch list item.
func (h *WatchListHandler) InsertItem(c fiber.Ctx) error {
	var req insertItemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	mt, err := models.ParseMediaType(req.MediaType)
	if err != nil {
		return c.JSON(models.Fail(err.Error()))
	}

	item := models.WatchListItem{
		MediaType:       mt,
		Name:            req.Name,
		Rating:          req.Rating,
		WouldWatchAgain: req.WouldWatchAgain,
	}
	return c.JSON(h.gw.Insert(c.Context(), item))
}

// DeleteItems removes a batch of items by id.
func (h *WatchListHandler) DeleteItems(c fiber.Ctx) error {
	var req deleteItemsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	return c.JSON(h.gw.DeleteBatch(c.Context(), req.IDs))
}
