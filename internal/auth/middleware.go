package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/linkbio-service/internal/domain"

	apperrors "github.com/spec-kit/linkbio-service/pkg/util"
)

const principalKey = "auth_principal"

// PrincipalSource confirms that a verified principal still exists.
type PrincipalSource interface {
	GetByHandle(ctx context.Context, handle string) (*domain.User, error)
}

// Middleware validates bearer tokens and enforces per-route access policies.
type Middleware struct {
	tokens *TokenManager
	users  PrincipalSource
	logger *zap.Logger
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, users PrincipalSource, logger *zap.Logger) *Middleware {
	return &Middleware{tokens: tokens, users: users, logger: logger}
}

// RequireAuth returns a handler enforcing the given policy. The decision is
// made before any route logic runs; on success the principal is attached to
// the request context and nothing else is mutated.
func (m *Middleware) RequireAuth(policy AccessPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return apperrors.NewUnauthorized("missing authorization header")
		}
		if !strings.HasPrefix(header, "Bearer ") {
			return apperrors.NewUnauthorized("invalid authorization header")
		}

		principal, err := m.tokens.Verify(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err != nil {
			m.logger.Debug("token rejected", zap.Error(err))
			return apperrors.NewUnauthorized(unauthorizedMessage(err))
		}

		// Tokens outlive account deletion; confirm the handle still resolves.
		if m.users != nil {
			if _, err := m.users.GetByHandle(c.Context(), principal.Handle); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NewUnauthorized("user no longer exists")
				}
				return apperrors.MapError(err)
			}
		}

		targetHandle := ""
		if policy.SelfAccess != nil {
			targetHandle = c.Params(policy.SelfAccess.Param)
		}
		if err := Decide(principal, policy, targetHandle); err != nil {
			return err
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "token expired"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid token signature"
	default:
		return "malformed token"
	}
}
