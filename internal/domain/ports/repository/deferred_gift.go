package repository

import (
	"context"

	"github.com/AlexJaimeH/narra-sub000/internal/domain/model"
)

// DeferredGiftRepository manages gift-later intent rows.
type DeferredGiftRepository interface {
	// FindByToken looks a request up by activation token regardless of
	// status; callers decide how to treat a used row.
	FindByToken(ctx context.Context, token string) (*model.DeferredGiftRequest, error)
	Insert(ctx context.Context, req *model.DeferredGiftRequest) error
	// MarkUsed flips the request to used and attaches the account it
	// materialized. This update is the activation's at-most-once guard.
	MarkUsed(ctx context.Context, id, accountID string) error
}
