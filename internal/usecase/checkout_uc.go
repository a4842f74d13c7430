package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/AlexJaimeH/narra-sub000/internal/domain"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/model"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/ports/adapter"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/ports/repository"
	rds "github.com/AlexJaimeH/narra-sub000/internal/infra/redis"
)

// Compile-time check
var _ CheckoutUseCase = (*checkoutUC)(nil)

// CheckoutUseCase verifies a completed payment and dispatches the purchase
// to the matching provisioning path exactly once per payment reference.
type CheckoutUseCase interface {
	Verify(ctx context.Context, sessionID string) (*VerifyResult, error)
}

// VerifyResult is the outcome of one verification call. AlreadyProcessed is
// an explicit idempotent success, not an error.
type VerifyResult struct {
	Variant          model.PurchaseVariant
	AlreadyProcessed bool
	UserID           string
	Message          string
}

type checkoutUC struct {
	checkout adapter.CheckoutProvider
	gifts    repository.GiftRepository
	prov     ProvisionUseCase
	giftUC   GiftUseCase
	locker   rds.Locker // optional; nil degrades to the bare existence check
	log      *zerolog.Logger
}

func NewCheckoutUseCase(
	checkout adapter.CheckoutProvider,
	gifts repository.GiftRepository,
	prov ProvisionUseCase,
	giftUC GiftUseCase,
	locker rds.Locker,
	logger *zerolog.Logger,
) *checkoutUC {
	return &checkoutUC{
		checkout: checkout,
		gifts:    gifts,
		prov:     prov,
		giftUC:   giftUC,
		locker:   locker,
		log:      logger,
	}
}

// Verify runs the §-ordered flow: fetch session, require paid, short-circuit
// on the existing witness, then branch on the parsed variant. The witness
// check and the downstream writes are not atomic; the per-session lock (when
// Redis is configured) rejects a concurrent duplicate instead of racing it.
func (u *checkoutUC) Verify(ctx context.Context, sessionID string) (*VerifyResult, error) {
	if sessionID == "" {
		return nil, domain.ErrInvalidArgument
	}

	if u.locker != nil {
		token, err := u.locker.TryLock(ctx, rds.VerifyLockKey(sessionID), 30*time.Second)
		if err != nil {
			if errors.Is(err, domain.ErrLocked) {
				return nil, domain.ErrLocked
			}
			// Redis being down must not block purchases.
			u.log.Warn().Err(err).Msg("verify lock unavailable; proceeding unlocked")
		} else {
			defer func() {
				if uerr := u.locker.Unlock(ctx, rds.VerifyLockKey(sessionID), token); uerr != nil {
					u.log.Warn().Err(uerr).Msg("verify lock release failed")
				}
			}()
		}
	}

	session, err := u.checkout.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	if !session.Paid() {
		return nil, &domain.PaymentStateError{Status: session.PaymentStatus}
	}

	if existing, err := u.gifts.FindBySessionID(ctx, sessionID); err == nil {
		u.log.Info().Str("session", sessionID).Msg("checkout already processed")
		return &VerifyResult{
			Variant:          existing.Variant,
			AlreadyProcessed: true,
			Message:          "purchase already processed",
		}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check gift record: %w", err)
	}

	purchase, err := model.ParsePurchase(session)
	if err != nil {
		return nil, fmt.Errorf("parse purchase metadata: %w", err)
	}

	switch p := purchase.(type) {
	case model.SelfPurchase:
		userID, err := u.prov.ProvisionSelf(ctx, p)
		if err != nil {
			return nil, err
		}
		return &VerifyResult{Variant: model.VariantSelf, UserID: userID, Message: "account created"}, nil
	case model.GiftNowPurchase:
		userID, err := u.prov.ProvisionGiftNow(ctx, p)
		if err != nil {
			return nil, err
		}
		return &VerifyResult{Variant: model.VariantGiftNow, UserID: userID, Message: "gift account created"}, nil
	case model.GiftLaterPurchase:
		ref := p.SessionRef
		if err := u.giftUC.Reserve(ctx, p.BuyerEmail, p.BuyerName, &ref); err != nil {
			return nil, err
		}
		return &VerifyResult{Variant: model.VariantGiftLater, Message: "gift reserved; activation email sent"}, nil
	default:
		return nil, domain.ErrInvalidArgument
	}
}
