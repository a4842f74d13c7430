package adapter

import (
	"context"

	"github.com/AlexJaimeH/narra-sub000/internal/domain/model"
)

// IdentityProvider is the hex port for the auth service's admin API.
type IdentityProvider interface {
	// FindUserByEmail returns the identity for an email, or
	// domain.ErrNotFound. This is the authoritative duplicate guard for
	// provisioning.
	FindUserByEmail(ctx context.Context, email string) (*model.Identity, error)
	// CreateUser registers an identity with a never-surfaced password and
	// email confirmation deferred to the magic link.
	CreateUser(ctx context.Context, email, password string, emailConfirm bool) (*model.Identity, error)
	// GenerateMagicLink returns a one-time login URL whose redirect target
	// already points at the product surface.
	GenerateMagicLink(ctx context.Context, email string) (string, error)
}
