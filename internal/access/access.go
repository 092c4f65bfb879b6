// Package access is the single place role rules live. Services ask these
// predicates; nothing else compares role strings.
package access

import (
	"context"
	"slices"
)

type Role string

const (
	RoleVisitor Role = "visitor"
	RoleWorker  Role = "worker"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleVisitor, RoleWorker, RoleAdmin:
		return true
	default:
		return false
	}
}

// Identity is the authenticated caller as far as the booking core cares.
type Identity struct {
	UserID string
	Roles  []Role
}

func (id Identity) Has(role Role) bool {
	return slices.Contains(id.Roles, role)
}

func IsAdmin(id Identity) bool {
	return id.Has(RoleAdmin)
}

func IsAdminOrWorker(id Identity) bool {
	return id.Has(RoleAdmin) || id.Has(RoleWorker)
}

// CanActOn reports whether id may act on a resource owned by ownerID.
func CanActOn(id Identity, ownerID string) bool {
	return (id.UserID != "" && id.UserID == ownerID) || IsAdminOrWorker(id)
}

func RequireAdmin(id Identity) error {
	if !IsAdmin(id) {
		return ErrAccessDenied
	}
	return nil
}

func RequireAdminOrWorker(id Identity) error {
	if !IsAdminOrWorker(id) {
		return ErrAccessDenied
	}
	return nil
}

func RequireOwnerOrAdminOrWorker(id Identity, ownerID string) error {
	if !CanActOn(id, ownerID) {
		return ErrAccessDenied
	}
	return nil
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity placed by the auth middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != ""
}
