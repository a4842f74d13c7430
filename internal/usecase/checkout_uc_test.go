//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/AlexJaimeH/narra-sub000/internal/domain"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/model"
	"github.com/AlexJaimeH/narra-sub000/internal/usecase"
)

// checkoutUCTestDeps wires a checkout use case over real provisioning and
// gift use cases so Verify is exercised end to end against the mocks.
type checkoutUCTestDeps struct {
	checkout *MockCheckoutProvider
	gifts    *MockGiftRepo
	deferred *MockDeferredGiftRepo
	identity *MockIdentityProvider
	profiles *MockProfileRepo
	mgmt     *MockManagementTokenRepo
	notifier *MockNotifier
	locker   *MockLocker
}

func newCheckoutUCDeps() *checkoutUCTestDeps {
	return &checkoutUCTestDeps{
		checkout: NewMockCheckoutProvider(),
		gifts:    NewMockGiftRepo(),
		deferred: NewMockDeferredGiftRepo(),
		identity: NewMockIdentityProvider(),
		profiles: NewMockProfileRepo(),
		mgmt:     NewMockManagementTokenRepo(),
		notifier: NewMockNotifier(),
		locker:   NewMockLocker(),
	}
}

func (d *checkoutUCTestDeps) build() usecase.CheckoutUseCase {
	logger := newTestLogger()
	prov := usecase.NewProvisionUseCase(d.identity, d.profiles, d.mgmt, d.gifts, d.notifier, "https://app.test/account/manage", logger)
	gift := usecase.NewGiftUseCase(d.deferred, d.gifts, prov, d.identity, d.notifier, "https://app.test/gift/activate", "https://app.test/account/manage", logger)
	return usecase.NewCheckoutUseCase(d.checkout, d.gifts, prov, gift, d.locker, logger)
}

func paidSession(id string, meta map[string]string) *model.CheckoutSession {
	return &model.CheckoutSession{
		ID:            id,
		PaymentStatus: "paid",
		Metadata:      meta,
	}
}

func TestCheckoutUseCase_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("should provision a self purchase once", func(t *testing.T) {
		// --- Arrange ---
		deps := newCheckoutUCDeps()
		deps.checkout.put(paidSession("cs_self", map[string]string{
			"purchaseType": "self",
			"authorEmail":  "ana@example.com",
			"authorName":   "Ana",
		}))
		uc := deps.build()

		// --- Act ---
		res, err := uc.Verify(ctx, "cs_self")

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if res.Variant != model.VariantSelf {
			t.Errorf("expected variant self, but got %q", res.Variant)
		}
		if res.AlreadyProcessed {
			t.Error("first verification must not report already processed")
		}
		if res.UserID == "" {
			t.Error("expected the new account id in the result")
		}
	})

	t.Run("should be idempotent across repeated verifications", func(t *testing.T) {
		// --- Arrange ---
		deps := newCheckoutUCDeps()
		deps.checkout.put(paidSession("cs_replay", map[string]string{
			"purchaseType": "self",
			"authorEmail":  "ana@example.com",
		}))
		uc := deps.build()

		// --- Act ---
		first, err := uc.Verify(ctx, "cs_replay")
		if err != nil {
			t.Fatalf("first verify failed: %v", err)
		}
		second, err := uc.Verify(ctx, "cs_replay")

		// --- Assert ---
		if err != nil {
			t.Fatalf("second verify failed: %v", err)
		}
		if !second.AlreadyProcessed {
			t.Error("second verification must report already processed")
		}
		if second.Variant != first.Variant {
			t.Errorf("replay must echo the original variant, got %q", second.Variant)
		}
		if deps.identity.created != 1 {
			t.Errorf("expected exactly one identity, but got %d", deps.identity.created)
		}
		if deps.gifts.inserts != 1 {
			t.Errorf("expected exactly one witness write, but got %d", deps.gifts.inserts)
		}
		if deps.notifier.total() != 1 {
			t.Errorf("expected exactly one email, but got %d", deps.notifier.total())
		}
	})

	t.Run("should reject an unpaid session with its payment status", func(t *testing.T) {
		// --- Arrange ---
		deps := newCheckoutUCDeps()
		deps.checkout.put(&model.CheckoutSession{
			ID:            "cs_unpaid",
			PaymentStatus: "unpaid",
			Metadata:      map[string]string{"purchaseType": "self", "authorEmail": "x@example.com"},
		})
		uc := deps.build()

		// --- Act ---
		_, err := uc.Verify(ctx, "cs_unpaid")

		// --- Assert ---
		var pse *domain.PaymentStateError
		if !errors.As(err, &pse) {
			t.Fatalf("expected PaymentStateError, but got: %v", err)
		}
		if pse.Status != "unpaid" {
			t.Errorf("expected status 'unpaid', but got %q", pse.Status)
		}
		if deps.identity.created != 0 {
			t.Error("an unpaid session must not provision anything")
		}
	})

	t.Run("should reserve a gift-later purchase without creating an identity", func(t *testing.T) {
		// --- Arrange ---
		deps := newCheckoutUCDeps()
		deps.checkout.put(paidSession("cs_later", map[string]string{
			"purchaseType": "gift",
			"giftTiming":   "later",
			"buyerEmail":   "buyer@example.com",
			"buyerName":    "Berta",
		}))
		uc := deps.build()

		// --- Act ---
		res, err := uc.Verify(ctx, "cs_later")

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if res.Variant != model.VariantGiftLater {
			t.Errorf("expected variant gift_later, but got %q", res.Variant)
		}
		if deps.identity.created != 0 {
			t.Error("gift-later must not create an identity at purchase time")
		}
		req := deps.deferred.first()
		if req == nil {
			t.Fatal("expected a deferred gift request")
		}
		if req.Status != model.DeferredGiftPending {
			t.Errorf("expected a pending request, but got %q", req.Status)
		}
		if req.StripeSessionID == nil || *req.StripeSessionID != "cs_later" {
			t.Error("expected the request to carry the session reference")
		}
		rec, err := deps.gifts.FindBySessionID(ctx, "cs_later")
		if err != nil {
			t.Fatalf("expected a reservation witness, but got: %v", err)
		}
		if rec.Variant != model.VariantGiftLater {
			t.Errorf("expected witness variant gift_later, but got %q", rec.Variant)
		}
		if rec.AccountID != nil {
			t.Error("reservation witness must not be bound to an account yet")
		}
		mails := deps.notifier.sentTo("buyer@example.com")
		if len(mails) != 1 || mails[0].Kind != "activation" {
			t.Fatalf("expected one activation email to the buyer, got %+v", mails)
		}
	})

	t.Run("should reject a concurrent duplicate while the lock is held", func(t *testing.T) {
		// --- Arrange ---
		deps := newCheckoutUCDeps()
		deps.checkout.put(paidSession("cs_locked", map[string]string{
			"purchaseType": "self",
			"authorEmail":  "x@example.com",
		}))
		deps.locker.hold("verify_lock:cs_locked")
		uc := deps.build()

		// --- Act ---
		_, err := uc.Verify(ctx, "cs_locked")

		// --- Assert ---
		if !errors.Is(err, domain.ErrLocked) {
			t.Fatalf("expected ErrLocked, but got: %v", err)
		}
	})

	t.Run("should reject unparseable metadata", func(t *testing.T) {
		// --- Arrange ---
		deps := newCheckoutUCDeps()
		deps.checkout.put(paidSession("cs_bad", map[string]string{"purchaseType": "subscription"}))
		uc := deps.build()

		// --- Act ---
		_, err := uc.Verify(ctx, "cs_bad")

		// --- Assert ---
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, but got: %v", err)
		}
	})

	t.Run("should reject an empty session id", func(t *testing.T) {
		deps := newCheckoutUCDeps()
		uc := deps.build()

		if _, err := uc.Verify(ctx, ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, but got: %v", err)
		}
	})
}
