package repository

import (
	"context"

	"github.com/AlexJaimeH/narra-sub000/internal/domain/model"
)

// GiftRepository manages the idempotency witness rows.
type GiftRepository interface {
	// FindBySessionID returns the record for a payment reference, or
	// domain.ErrNotFound when provisioning has not completed for it.
	FindBySessionID(ctx context.Context, sessionID string) (*model.GiftRecord, error)
	// Insert persists a new witness. The backend enforces no uniqueness;
	// callers are expected to have checked existence first.
	Insert(ctx context.Context, rec *model.GiftRecord) error
}
