package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/linkbio-service/internal/api/dto"
	"github.com/spec-kit/linkbio-service/internal/service"
)

// LinksHandler exposes link CRUD for a handle.
type LinksHandler struct {
	links *service.LinkService
}

// NewLinksHandler constructs handler.
func NewLinksHandler(linkService *service.LinkService) *LinksHandler {
	return &LinksHandler{links: linkService}
}

// List handles GET /api/users/:handle/links.
func (h *LinksHandler) List(c *fiber.Ctx) error {
	links, err := h.links.List(c.Context(), c.Params("handle"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": links})
}

// Create handles POST /api/users/:handle/links.
func (h *LinksHandler) Create(c *fiber.Ctx) error {
	input, err := parseLinkInput(c)
	if err != nil {
		return err
	}

	link, err := h.links.Create(c.Context(), c.Params("handle"), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": link})
}

// Update handles PUT /api/users/:handle/links/:linkId.
func (h *LinksHandler) Update(c *fiber.Ctx) error {
	linkID, err := parseLinkID(c)
	if err != nil {
		return err
	}
	input, err := parseLinkInput(c)
	if err != nil {
		return err
	}

	link, err := h.links.Update(c.Context(), c.Params("handle"), linkID, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": link})
}

// Delete handles DELETE /api/users/:handle/links/:linkId.
func (h *LinksHandler) Delete(c *fiber.Ctx) error {
	linkID, err := parseLinkID(c)
	if err != nil {
		return err
	}

	if err := h.links.Delete(c.Context(), c.Params("handle"), linkID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

func parseLinkID(c *fiber.Ctx) (int64, error) {
	linkID, err := strconv.ParseInt(c.Params("linkId"), 10, 64)
	if err != nil || linkID <= 0 {
		return 0, fiber.NewError(http.StatusBadRequest, "invalid link id")
	}
	return linkID, nil
}

func parseLinkInput(c *fiber.Ctx) (service.LinkInput, error) {
	var req dto.LinkRequest
	if err := c.BodyParser(&req); err != nil {
		return service.LinkInput{}, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Title == "" || req.URL == "" {
		return service.LinkInput{}, fiber.NewError(http.StatusBadRequest, "title and url required")
	}
	return service.LinkInput{
		Title:    req.Title,
		URL:      req.URL,
		Position: req.Order,
		IsHidden: req.IsHidden,
	}, nil
}
