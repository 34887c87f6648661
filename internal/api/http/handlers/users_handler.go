package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/linkbio-service/internal/api/dto"
	"github.com/spec-kit/linkbio-service/internal/auth"
	"github.com/spec-kit/linkbio-service/internal/jobs"
	"github.com/spec-kit/linkbio-service/internal/queue"
	"github.com/spec-kit/linkbio-service/internal/service"

	apperrors "github.com/spec-kit/linkbio-service/pkg/util"
)

// UsersHandler exposes the user and profile surface.
type UsersHandler struct {
	users     *service.UserService
	publisher *queue.Publisher
}

// NewUsersHandler constructs handler. The publisher may be nil when the
// queue binding is absent.
func NewUsersHandler(userService *service.UserService, publisher *queue.Publisher) *UsersHandler {
	return &UsersHandler{users: userService, publisher: publisher}
}

// List handles GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	users, err := h.users.List(c.Context(), limit)
	if err != nil {
		return err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i], nil))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /api/users/:handle.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	result, err := h.users.GetByHandle(c.Context(), c.Params("handle"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(result.User, result.Profile)})
}

// UpdateProfile handles PUT /api/users/:handle/profile (admin).
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	return h.submitProfile(c)
}

// SubmitProfile handles POST /api/users/:handle/profile (owner only).
func (h *UsersHandler) SubmitProfile(c *fiber.Ctx) error {
	return h.submitProfile(c)
}

func (h *UsersHandler) submitProfile(c *fiber.Ctx) error {
	var req dto.ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	result, err := h.users.SubmitProfile(c.Context(), c.Params("handle"), service.ProfileInput{
		Bio:      req.Bio,
		Location: req.Location,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(result.User, result.Profile)})
}

// RefreshQR handles POST /api/users/:handle/qr: enqueues qr-cache jobs for
// the provided source URLs. Fire-and-forget; caching happens in the worker.
func (h *UsersHandler) RefreshQR(c *fiber.Ctx) error {
	var req dto.QRRefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.WechatURL == "" && req.GroupURL == "" {
		return fiber.NewError(http.StatusBadRequest, "wechatUrl or groupUrl required")
	}

	result, err := h.users.GetByHandle(c.Context(), c.Params("handle"))
	if err != nil {
		return err
	}

	targets := []struct {
		target jobs.QRTarget
		url    string
	}{
		{jobs.QRTargetWechat, req.WechatURL},
		{jobs.QRTargetGroup, req.GroupURL},
	}

	queued := 0
	for _, t := range targets {
		if t.url == "" {
			continue
		}
		job, err := jobs.NewQRCacheJob(jobs.QRCachePayload{
			UserID:    result.User.ID,
			Handle:    result.User.Handle,
			Target:    t.target,
			SourceURL: t.url,
		})
		if err != nil {
			return err
		}
		if err := h.publisher.Enqueue(c.Context(), job); err != nil {
			return apperrors.NewServiceUnavailable("job queue unavailable")
		}
		queued++
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"queued": queued}})
}

func principalOrUnauthorized(c *fiber.Ctx) (*auth.Principal, bool) {
	return auth.PrincipalFromContext(c)
}
