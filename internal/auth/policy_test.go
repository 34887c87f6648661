package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/linkbio-service/internal/domain"
)

func TestDecide(t *testing.T) {
	alice := &Principal{ID: 7, Handle: "alice", Role: domain.RoleUser}
	root := &Principal{ID: 1, Handle: "root", Role: domain.RoleAdmin}

	adminOnly := AccessPolicy{RequiredRole: domain.RoleAdmin}
	adminOrSelf := AccessPolicy{
		RequiredRole: domain.RoleAdmin,
		SelfAccess:   &SelfAccess{Param: "handle"},
	}
	selfOnly := AccessPolicy{
		SelfAccess: &SelfAccess{Param: "handle", Require: true},
	}

	tests := []struct {
		name      string
		principal *Principal
		policy    AccessPolicy
		target    string
		allow     bool
	}{
		{"open policy allows anyone", alice, AccessPolicy{}, "", true},
		{"admin-only denies user", alice, adminOnly, "", false},
		{"admin-only allows admin", root, adminOnly, "", true},
		{"admin-or-self allows owner", alice, adminOrSelf, "alice", true},
		{"admin-or-self allows owner with at-prefix", alice, adminOrSelf, "@alice", true},
		{"admin-or-self allows admin on other profile", root, adminOrSelf, "alice", true},
		{"admin-or-self denies other user", alice, adminOrSelf, "bob", false},
		{"self-only allows owner", alice, selfOnly, "alice", true},
		{"self-only allows owner with at-prefix", alice, selfOnly, "@alice", true},
		{"self-only denies other user", alice, selfOnly, "bob", false},
		{"self-only denies admin who is not owner", root, selfOnly, "alice", false},
		{"self-only allows admin on own profile", root, selfOnly, "root", true},
		{"self-only denies empty target", alice, selfOnly, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Decide(tc.principal, tc.policy, tc.target)
			if tc.allow {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDecideHandleMatchIsCaseSensitive(t *testing.T) {
	alice := &Principal{ID: 7, Handle: "alice", Role: domain.RoleUser}
	policy := AccessPolicy{SelfAccess: &SelfAccess{Param: "handle", Require: true}}

	assert.Error(t, Decide(alice, policy, "Alice"))
	assert.NoError(t, Decide(alice, policy, "alice"))
}
