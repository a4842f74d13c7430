package repository

import (
	"context"

	"github.com/AlexJaimeH/narra-sub000/internal/domain/model"
)

// ProfileRepository writes the product-side rows next to a new identity.
type ProfileRepository interface {
	Insert(ctx context.Context, p *model.Profile) error
	// InsertSettings is a soft dependency of provisioning: failures are
	// logged by the caller, never fatal.
	InsertSettings(ctx context.Context, s *model.ProfileSettings) error
}

// ManagementTokenRepository persists post-purchase administration tokens.
type ManagementTokenRepository interface {
	Insert(ctx context.Context, t *model.ManagementToken) error
	FindByToken(ctx context.Context, token string) (*model.ManagementToken, error)
}
