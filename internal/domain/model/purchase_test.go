//go:build !integration

package model_test

import (
	"errors"
	"testing"

	"github.com/AlexJaimeH/narra-sub000/internal/domain"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/model"
)

func session(meta map[string]string) *model.CheckoutSession {
	return &model.CheckoutSession{
		ID:            "cs_123",
		PaymentStatus: "paid",
		Metadata:      meta,
		CustomerEmail: "customer@example.com",
	}
}

func TestCheckoutSession_Paid(t *testing.T) {
	cases := map[string]bool{
		"paid":                true,
		"unpaid":              false,
		"no_payment_required": false,
		"":                    false,
	}
	for status, want := range cases {
		s := &model.CheckoutSession{PaymentStatus: status}
		if got := s.Paid(); got != want {
			t.Errorf("Paid() with status %q = %v, want %v", status, got, want)
		}
	}
}

func TestParsePurchase(t *testing.T) {
	t.Run("should parse a self purchase", func(t *testing.T) {
		p, err := model.ParsePurchase(session(map[string]string{
			"purchaseType": "self",
			"authorEmail":  "ana@example.com",
			"authorName":   "Ana",
		}))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		sp, ok := p.(model.SelfPurchase)
		if !ok {
			t.Fatalf("expected SelfPurchase, but got %T", p)
		}
		if sp.AuthorEmail != "ana@example.com" || sp.AuthorName != "Ana" {
			t.Errorf("unexpected fields: %+v", sp)
		}
		if sp.PaymentRef() != "cs_123" {
			t.Errorf("expected the session id as payment ref, got %q", sp.PaymentRef())
		}
	})

	t.Run("should fall back to the customer email for self purchases", func(t *testing.T) {
		p, err := model.ParsePurchase(session(map[string]string{"purchaseType": "self"}))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if p.(model.SelfPurchase).AuthorEmail != "customer@example.com" {
			t.Error("expected the customer email fallback")
		}
	})

	t.Run("should parse an immediate gift", func(t *testing.T) {
		p, err := model.ParsePurchase(session(map[string]string{
			"purchaseType": "gift",
			"giftTiming":   "now",
			"authorEmail":  "abuela@example.com",
			"authorName":   "Abuela Rosa",
			"buyerEmail":   "nieto@example.com",
			"buyerName":    "Carlos",
			"giftMessage":  "Con cariño",
		}))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		gp, ok := p.(model.GiftNowPurchase)
		if !ok {
			t.Fatalf("expected GiftNowPurchase, but got %T", p)
		}
		if gp.RecipientEmail != "abuela@example.com" || gp.BuyerEmail != "nieto@example.com" {
			t.Errorf("unexpected fields: %+v", gp)
		}
		if gp.GiftMessage != "Con cariño" {
			t.Errorf("expected the gift message, got %q", gp.GiftMessage)
		}
	})

	t.Run("should treat a gift without timing as immediate", func(t *testing.T) {
		p, err := model.ParsePurchase(session(map[string]string{
			"purchaseType": "gift",
			"authorEmail":  "abuela@example.com",
		}))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if _, ok := p.(model.GiftNowPurchase); !ok {
			t.Fatalf("expected GiftNowPurchase, but got %T", p)
		}
	})

	t.Run("should parse a deferred gift without a recipient", func(t *testing.T) {
		p, err := model.ParsePurchase(session(map[string]string{
			"purchaseType": "gift",
			"giftTiming":   "later",
			"buyerEmail":   "buyer@example.com",
			"buyerName":    "Berta",
		}))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		gp, ok := p.(model.GiftLaterPurchase)
		if !ok {
			t.Fatalf("expected GiftLaterPurchase, but got %T", p)
		}
		if gp.BuyerEmail != "buyer@example.com" {
			t.Errorf("unexpected buyer email %q", gp.BuyerEmail)
		}
		if gp.Variant() != model.VariantGiftLater {
			t.Errorf("expected variant gift_later, got %q", gp.Variant())
		}
	})

	t.Run("should reject bad metadata", func(t *testing.T) {
		bad := []map[string]string{
			{},
			{"purchaseType": "subscription"},
			{"purchaseType": "gift", "giftTiming": "someday"},
			{"purchaseType": "gift", "giftTiming": "now"}, // no recipient email
		}
		for _, meta := range bad {
			s := session(meta)
			s.CustomerEmail = ""
			if _, err := model.ParsePurchase(s); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument for %v, but got: %v", meta, err)
			}
		}
	})

	t.Run("should trim surrounding whitespace", func(t *testing.T) {
		p, err := model.ParsePurchase(session(map[string]string{
			"purchaseType": " self ",
			"authorEmail":  " ana@example.com ",
		}))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if p.(model.SelfPurchase).AuthorEmail != "ana@example.com" {
			t.Error("expected the trimmed author email")
		}
	})
}
