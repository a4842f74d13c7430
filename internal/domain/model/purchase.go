package model

import (
	"strings"

	"github.com/AlexJaimeH/narra-sub000/internal/domain"
)

// PurchaseVariant is the persisted form of the purchase branch.
type PurchaseVariant string

const (
	VariantSelf      PurchaseVariant = "self"
	VariantGiftNow   PurchaseVariant = "gift_now"
	VariantGiftLater PurchaseVariant = "gift_later"
)

// CheckoutSession is the read-only view of one payment attempt as retrieved
// from the payment processor. Immutable once the processor marks it paid.
type CheckoutSession struct {
	ID            string
	PaymentStatus string
	PaymentIntent string
	Metadata      map[string]string
	CustomerEmail string
}

// Paid reports whether the processor captured the payment.
func (s *CheckoutSession) Paid() bool { return s.PaymentStatus == "paid" }

// Purchase is the tagged union of the three acquisition branches. It is
// parsed exactly once, at the verifier boundary, so downstream components
// receive an already-narrowed variant instead of re-checking string fields.
type Purchase interface {
	Variant() PurchaseVariant
	PaymentRef() string
}

// SelfPurchase: the buyer is the author.
type SelfPurchase struct {
	SessionRef  string
	AuthorEmail string
	AuthorName  string
}

func (p SelfPurchase) Variant() PurchaseVariant { return VariantSelf }
func (p SelfPurchase) PaymentRef() string       { return p.SessionRef }

// GiftNowPurchase: the buyer knows the recipient and wants the account now.
type GiftNowPurchase struct {
	SessionRef     string
	RecipientEmail string
	RecipientName  string
	BuyerEmail     string
	BuyerName      string
	GiftMessage    string
}

func (p GiftNowPurchase) Variant() PurchaseVariant { return VariantGiftNow }
func (p GiftNowPurchase) PaymentRef() string       { return p.SessionRef }

// GiftLaterPurchase: only intent is recorded; the recipient is unknown until
// the buyer activates.
type GiftLaterPurchase struct {
	SessionRef string
	BuyerEmail string
	BuyerName  string
}

func (p GiftLaterPurchase) Variant() PurchaseVariant { return VariantGiftLater }
func (p GiftLaterPurchase) PaymentRef() string       { return p.SessionRef }

// ParsePurchase narrows checkout-session metadata into a Purchase.
// Metadata contract: purchaseType is "self" or "gift"; gifts additionally
// carry giftTiming "now" or "later".
func ParsePurchase(s *CheckoutSession) (Purchase, error) {
	meta := s.Metadata
	get := func(k string) string { return strings.TrimSpace(meta[k]) }

	switch get("purchaseType") {
	case "self":
		email := get("authorEmail")
		if email == "" {
			email = s.CustomerEmail
		}
		if email == "" {
			return nil, domain.ErrInvalidArgument
		}
		return SelfPurchase{
			SessionRef:  s.ID,
			AuthorEmail: email,
			AuthorName:  get("authorName"),
		}, nil
	case "gift":
		switch get("giftTiming") {
		case "later":
			buyer := get("buyerEmail")
			if buyer == "" {
				buyer = s.CustomerEmail
			}
			if buyer == "" {
				return nil, domain.ErrInvalidArgument
			}
			return GiftLaterPurchase{
				SessionRef: s.ID,
				BuyerEmail: buyer,
				BuyerName:  get("buyerName"),
			}, nil
		case "now", "":
			recipient := get("authorEmail")
			if recipient == "" {
				return nil, domain.ErrInvalidArgument
			}
			buyer := get("buyerEmail")
			if buyer == "" {
				buyer = s.CustomerEmail
			}
			return GiftNowPurchase{
				SessionRef:     s.ID,
				RecipientEmail: recipient,
				RecipientName:  get("authorName"),
				BuyerEmail:     buyer,
				BuyerName:      get("buyerName"),
				GiftMessage:    get("giftMessage"),
			}, nil
		default:
			return nil, domain.ErrInvalidArgument
		}
	default:
		return nil, domain.ErrInvalidArgument
	}
}
