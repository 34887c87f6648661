package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/linkbio-service/internal/api/dto"
	"github.com/spec-kit/linkbio-service/internal/jobs"
	"github.com/spec-kit/linkbio-service/internal/queue"

	apperrors "github.com/spec-kit/linkbio-service/pkg/util"
)

// MetricsHandler enqueues click-metric jobs. Clicks are fire-and-forget
// from the caller's perspective; the worker records them.
type MetricsHandler struct {
	publisher *queue.Publisher
}

// NewMetricsHandler constructs handler. The publisher may be nil when the
// queue binding is absent.
func NewMetricsHandler(publisher *queue.Publisher) *MetricsHandler {
	return &MetricsHandler{publisher: publisher}
}

// RecordLinkClick handles POST /api/metrics/links.
func (h *MetricsHandler) RecordLinkClick(c *fiber.Ctx) error {
	var req dto.ClickRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.LinkID <= 0 {
		return fiber.NewError(http.StatusBadRequest, "invalid link id")
	}

	job, err := jobs.NewClickJob(jobs.ClickPayload{
		LinkID:    req.LinkID,
		Handle:    req.Handle,
		Referrer:  c.Get("Referer"),
		UserAgent: c.Get("User-Agent"),
		Country:   c.Get("CF-IPCountry"),
	})
	if err != nil {
		return err
	}

	if err := h.publisher.Enqueue(c.Context(), job); err != nil {
		return apperrors.NewServiceUnavailable("metrics queue unavailable")
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"queued": true}})
}
