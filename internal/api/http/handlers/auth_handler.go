package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/linkbio-service/internal/api/dto"
	"github.com/spec-kit/linkbio-service/internal/service"
)

// AuthHandler exposes registration and login endpoints.
type AuthHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{auth: authService, users: userService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Handle == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "handle and password required")
	}

	user, token, exp, err := h.auth.Register(c.Context(), req.Handle, req.DisplayName, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user, nil),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Handle == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "handle and password required")
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.Handle, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user, nil),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Profile handles GET /api/auth/profile for the authenticated caller.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	principal, ok := principalOrUnauthorized(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	result, err := h.users.GetByHandle(c.Context(), principal.Handle)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(result.User, result.Profile)})
}
