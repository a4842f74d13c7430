package rest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AlexJaimeH/narra-sub000/internal/domain"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/model"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.DeferredGiftRepository = (*deferredGiftRepo)(nil)

type deferredGiftRepo struct {
	client *Client
}

func NewDeferredGiftRepo(client *Client) repository.DeferredGiftRepository {
	return &deferredGiftRepo{client: client}
}

type deferredGiftRow struct {
	ID              string     `json:"id"`
	BuyerEmail      string     `json:"buyer_email"`
	BuyerName       string     `json:"buyer_name"`
	ActivationToken string     `json:"activation_token"`
	Status          string     `json:"status"`
	StripeSessionID *string    `json:"stripe_session_id"`
	AccountID       *string    `json:"account_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UsedAt          *time.Time `json:"used_at"`
}

func (r *deferredGiftRepo) FindByToken(ctx context.Context, token string) (*model.DeferredGiftRequest, error) {
	var rows []deferredGiftRow
	if err := r.client.Select(ctx, "gift_requests", map[string]string{"activation_token": token}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return rows[0].toModel(), nil
}

func (r *deferredGiftRepo) Insert(ctx context.Context, req *model.DeferredGiftRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	row := deferredGiftRow{
		ID:              req.ID,
		BuyerEmail:      req.BuyerEmail,
		BuyerName:       req.BuyerName,
		ActivationToken: req.ActivationToken,
		Status:          string(req.Status),
		StripeSessionID: req.StripeSessionID,
		AccountID:       req.AccountID,
		CreatedAt:       req.CreatedAt,
		UsedAt:          req.UsedAt,
	}
	return r.client.Insert(ctx, "gift_requests", row, nil)
}

func (r *deferredGiftRepo) MarkUsed(ctx context.Context, id, accountID string) error {
	now := time.Now()
	patch := map[string]interface{}{
		"status":     string(model.DeferredGiftUsed),
		"account_id": accountID,
		"used_at":    now.Format(time.RFC3339),
	}
	return r.client.Update(ctx, "gift_requests", map[string]string{"id": id}, patch)
}

func (row deferredGiftRow) toModel() *model.DeferredGiftRequest {
	return &model.DeferredGiftRequest{
		ID:              row.ID,
		BuyerEmail:      row.BuyerEmail,
		BuyerName:       row.BuyerName,
		ActivationToken: row.ActivationToken,
		Status:          model.DeferredGiftStatus(row.Status),
		StripeSessionID: row.StripeSessionID,
		AccountID:       row.AccountID,
		CreatedAt:       row.CreatedAt,
		UsedAt:          row.UsedAt,
	}
}
