// Package auth holds the authenticated identity type and the single
// authorization policy applied by every resource handler.  The same
// ownership-or-admin rule used to be restated inside each controller;
// it lives here exactly once so blog deletion, comment deletion and
// any future ownership-gated resource cannot drift apart.
package auth

import (
	"errors"

	"github.com/classless/blog-api/internal/model"
)

// ErrForbidden is returned when the identity is neither the resource
// owner, an admin, nor a holder of an explicitly allowed role.
// Handlers translate it into a 403 AuthorizationError response with a
// fixed message that leaks nothing about the resource beyond what a
// prior not-found check already revealed.
var ErrForbidden = errors.New("forbidden")

// Identity is the result of access token verification, attached to the
// request context by the authentication gate and consumed by handlers.
type Identity struct {
	UserID uint64
	Role   string
}

// Authorize decides whether identity may act on a resource.
//
// The rule: allow when the identity's role is in allowedRoles (role-gated
// endpoints, e.g. only admin may create a blog), or when an ownership-gated
// mutation is performed by the resource owner, or when the identity is an
// admin regardless of ownership.  Everything else is a deny.  Pass
// ownerID 0 for purely role-gated checks.
func Authorize(id Identity, ownerID uint64, allowedRoles ...string) error {
	if id.Role == model.RoleAdmin {
		return nil
	}
	for _, r := range allowedRoles {
		if id.Role == r {
			return nil
		}
	}
	if ownerID != 0 && id.UserID == ownerID {
		return nil
	}
	return ErrForbidden
}
