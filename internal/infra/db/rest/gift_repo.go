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
var _ repository.GiftRepository = (*giftRepo)(nil)

type giftRepo struct {
	client *Client
}

func NewGiftRepo(client *Client) repository.GiftRepository {
	return &giftRepo{client: client}
}

type giftRow struct {
	ID              string    `json:"id"`
	StripeSessionID string    `json:"stripe_session_id"`
	Variant         string    `json:"purchase_variant"`
	RecipientEmail  string    `json:"recipient_email"`
	RecipientName   string    `json:"recipient_name"`
	BuyerEmail      string    `json:"buyer_email"`
	BuyerName       string    `json:"buyer_name"`
	GiftMessage     string    `json:"gift_message"`
	AccountID       *string   `json:"account_id"`
	CreatedAt       time.Time `json:"created_at"`
}

func (r *giftRepo) FindBySessionID(ctx context.Context, sessionID string) (*model.GiftRecord, error) {
	var rows []giftRow
	if err := r.client.Select(ctx, "gifts", map[string]string{"stripe_session_id": sessionID}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return rows[0].toModel(), nil
}

func (r *giftRepo) Insert(ctx context.Context, rec *model.GiftRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	row := giftRow{
		ID:              rec.ID,
		StripeSessionID: rec.StripeSessionID,
		Variant:         string(rec.Variant),
		RecipientEmail:  rec.RecipientEmail,
		RecipientName:   rec.RecipientName,
		BuyerEmail:      rec.BuyerEmail,
		BuyerName:       rec.BuyerName,
		GiftMessage:     rec.GiftMessage,
		AccountID:       rec.AccountID,
		CreatedAt:       rec.CreatedAt,
	}
	return r.client.Insert(ctx, "gifts", row, nil)
}

func (row giftRow) toModel() *model.GiftRecord {
	return &model.GiftRecord{
		ID:              row.ID,
		StripeSessionID: row.StripeSessionID,
		Variant:         model.PurchaseVariant(row.Variant),
		RecipientEmail:  row.RecipientEmail,
		RecipientName:   row.RecipientName,
		BuyerEmail:      row.BuyerEmail,
		BuyerName:       row.BuyerName,
		GiftMessage:     row.GiftMessage,
		AccountID:       row.AccountID,
		CreatedAt:       row.CreatedAt,
	}
}
