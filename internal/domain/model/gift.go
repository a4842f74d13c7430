package model

import "time"

// GiftRecord is the idempotency witness for one payment reference: its
// existence means provisioning for that reference has completed. Keyed by
// the processor's session id.
type GiftRecord struct {
	ID              string
	StripeSessionID string
	Variant         PurchaseVariant
	RecipientEmail  string
	RecipientName   string
	BuyerEmail      string
	BuyerName       string
	GiftMessage     string
	AccountID       *string // set for immediate variants; nil while a gift_later is unactivated
	CreatedAt       time.Time
}

type DeferredGiftStatus string

const (
	DeferredGiftPending DeferredGiftStatus = "pending"
	DeferredGiftUsed    DeferredGiftStatus = "used"
)

// DeferredGiftRequest persists a gift-later buyer's intent. The activation
// token is single-use: marking the row used is the at-most-once guard for
// account materialization.
type DeferredGiftRequest struct {
	ID              string
	BuyerEmail      string
	BuyerName       string
	ActivationToken string
	Status          DeferredGiftStatus
	StripeSessionID *string
	AccountID       *string // set when activated
	CreatedAt       time.Time
	UsedAt          *time.Time
}

// ManagementToken binds a buyer email to a provisioned account for
// post-purchase administration. Issuance only; consumption is out of scope.
type ManagementToken struct {
	ID         string
	Token      string
	AccountID  string
	BuyerEmail string
	CreatedAt  time.Time
}
