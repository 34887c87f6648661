package auth

import (
	"strings"

	"github.com/spec-kit/linkbio-service/internal/domain"

	apperrors "github.com/spec-kit/linkbio-service/pkg/util"
)

// SelfAccess lets a route grant access to the account owner, matched by
// the named path parameter against the token's handle.
type SelfAccess struct {
	// Param is the route parameter carrying the target handle.
	Param string
	// Require restricts the route to the owner alone. An admin who is not
	// the owner is denied; owner-only routes take no role shortcut.
	Require bool
}

// AccessPolicy is the per-route declarative authorization policy.
type AccessPolicy struct {
	RequiredRole domain.Role
	SelfAccess   *SelfAccess
}

// Decide applies the policy to a verified principal and the resolved
// target handle. Pure; returns nil on allow and a Forbidden error on deny.
func Decide(p *Principal, policy AccessPolicy, targetHandle string) error {
	normalized := strings.TrimPrefix(targetHandle, "@")
	isSelf := normalized != "" && normalized == p.Handle
	isAdmin := p.Role == domain.RoleAdmin

	// Owner-only check comes first: it binds regardless of role and even
	// when no role is required.
	if policy.SelfAccess != nil && policy.SelfAccess.Require && !isSelf {
		return apperrors.NewForbidden("forbidden")
	}

	if policy.RequiredRole == domain.RoleAdmin {
		if !isAdmin && !(policy.SelfAccess != nil && isSelf) {
			return apperrors.NewForbidden("admin permission required")
		}
	}

	return nil
}
