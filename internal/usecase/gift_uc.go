package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AlexJaimeH/narra-sub000/internal/domain"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/model"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/ports/adapter"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/ports/repository"
	"github.com/AlexJaimeH/narra-sub000/internal/infra/metrics"
)

// Compile-time check
var _ GiftUseCase = (*giftUC)(nil)

// GiftUseCase is the two-phase deferred gift saga: reserve intent at
// purchase time, materialize the account at a later, buyer-chosen time. No
// identity and no storage cost exist until the buyer activates.
type GiftUseCase interface {
	// Reserve persists a pending DeferredGiftRequest and emails the buyer
	// an activation URL. sessionRef is nil for the public request endpoint,
	// which has no payment reference.
	Reserve(ctx context.Context, buyerEmail, buyerName string, sessionRef *string) error
	// Validate resolves an activation token for the activation page.
	Validate(ctx context.Context, token string) (*model.DeferredGiftRequest, error)
	// Activate materializes the gifted account. At-most-once per token.
	Activate(ctx context.Context, in ActivateInput) (string, error)
}

// ActivateInput carries the recipient details the buyer supplies at
// activation time.
type ActivateInput struct {
	Token       string
	AuthorName  string
	AuthorEmail string
	BuyerName   string
	GiftMessage string
}

type giftUC struct {
	deferred      repository.DeferredGiftRepository
	gifts         repository.GiftRepository
	prov          *provisionUC
	identity      adapter.IdentityProvider
	notifier      adapter.Notifier
	activationURL string
	manageURL     string
	log           *zerolog.Logger
}

func NewGiftUseCase(
	deferred repository.DeferredGiftRepository,
	gifts repository.GiftRepository,
	prov *provisionUC,
	identity adapter.IdentityProvider,
	notifier adapter.Notifier,
	activationURL, manageURL string,
	logger *zerolog.Logger,
) *giftUC {
	return &giftUC{
		deferred:      deferred,
		gifts:         gifts,
		prov:          prov,
		identity:      identity,
		notifier:      notifier,
		activationURL: activationURL,
		manageURL:     manageURL,
		log:           logger,
	}
}

func (u *giftUC) Reserve(ctx context.Context, buyerEmail, buyerName string, sessionRef *string) error {
	if buyerEmail == "" {
		return domain.ErrInvalidArgument
	}

	token, err := generateActivationToken()
	if err != nil {
		return fmt.Errorf("generate activation token: %w", err)
	}

	req := &model.DeferredGiftRequest{
		ID:              uuid.NewString(),
		BuyerEmail:      buyerEmail,
		BuyerName:       buyerName,
		ActivationToken: token,
		Status:          model.DeferredGiftPending,
		StripeSessionID: sessionRef,
		CreatedAt:       time.Now(),
	}
	if err := u.deferred.Insert(ctx, req); err != nil {
		return fmt.Errorf("persist deferred gift request: %w", err)
	}

	// The witness makes a replayed verification short-circuit; it marks the
	// reservation, not the (future) account, as done.
	if sessionRef != nil {
		rec := &model.GiftRecord{
			ID:              uuid.NewString(),
			StripeSessionID: *sessionRef,
			Variant:         model.VariantGiftLater,
			BuyerEmail:      buyerEmail,
			BuyerName:       buyerName,
			CreatedAt:       time.Now(),
		}
		if err := u.gifts.Insert(ctx, rec); err != nil {
			return fmt.Errorf("persist gift record: %w", err)
		}
	}

	if err := u.notifier.SendActivationInvite(ctx, buyerEmail, u.activationURL+"?token="+token); err != nil {
		metrics.EmailTotal.WithLabelValues("activation", "error").Inc()
		u.log.Error().Err(err).Str("buyer", buyerEmail).Msg("activation invite email failed")
	} else {
		metrics.EmailTotal.WithLabelValues("activation", "sent").Inc()
	}
	metrics.ProvisionTotal.WithLabelValues(string(model.VariantGiftLater), "ok").Inc()
	return nil
}

func (u *giftUC) Validate(ctx context.Context, token string) (*model.DeferredGiftRequest, error) {
	req, err := u.deferred.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, err
	}
	if req.Status != model.DeferredGiftPending {
		return nil, domain.ErrTokenAlreadyUsed
	}
	return req, nil
}

func (u *giftUC) Activate(ctx context.Context, in ActivateInput) (string, error) {
	if in.Token == "" || in.AuthorEmail == "" {
		return "", domain.ErrInvalidArgument
	}

	req, err := u.deferred.FindByToken(ctx, in.Token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.ActivationTotal.WithLabelValues("token_not_found").Inc()
			return "", domain.ErrTokenNotFound
		}
		metrics.ActivationTotal.WithLabelValues("error").Inc()
		return "", err
	}
	if req.Status != model.DeferredGiftPending {
		metrics.ActivationTotal.WithLabelValues("token_used").Inc()
		return "", domain.ErrTokenAlreadyUsed
	}
	if err := u.checkVariant(ctx, req); err != nil {
		metrics.ActivationTotal.WithLabelValues("wrong_variant").Inc()
		return "", err
	}

	identity, err := u.prov.createAccount(ctx, in.AuthorEmail, in.AuthorName)
	if err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyRegistered) {
			metrics.ActivationTotal.WithLabelValues("duplicate_email").Inc()
		} else {
			metrics.ActivationTotal.WithLabelValues("error").Inc()
		}
		return "", err
	}

	// The at-most-once guard. Performed before the magic link and emails: a
	// half-sent email is recoverable by support, a double-activated token
	// is not.
	if err := u.deferred.MarkUsed(ctx, req.ID, identity.ID); err != nil {
		metrics.ActivationTotal.WithLabelValues("error").Inc()
		u.log.Error().Err(err).
			Str("request_id", req.ID).
			Str("account_id", identity.ID).
			Msg("account created but token not marked used; manual intervention required")
		return "", fmt.Errorf("mark activation token used: %w", err)
	}

	buyerName := in.BuyerName
	if buyerName == "" {
		buyerName = req.BuyerName
	}

	manageURL := ""
	if mgmtToken, err := u.prov.issueManagementToken(ctx, identity.ID, req.BuyerEmail); err != nil {
		u.log.Error().Err(err).Str("account_id", identity.ID).Msg("management token issuance failed")
	} else {
		manageURL = u.manageURL + "?token=" + mgmtToken
	}

	link, err := u.identity.GenerateMagicLink(ctx, identity.Email)
	if err != nil {
		u.log.Error().Err(err).Str("email", identity.Email).Msg("magic link generation failed")
		link = ""
	}

	if err := u.notifier.SendGiftRecipient(ctx, in.AuthorEmail, in.AuthorName, buyerName, in.GiftMessage, link); err != nil {
		metrics.EmailTotal.WithLabelValues("gift_recipient", "error").Inc()
		u.log.Error().Err(err).Str("recipient", in.AuthorEmail).Msg("gift recipient email failed")
	} else {
		metrics.EmailTotal.WithLabelValues("gift_recipient", "sent").Inc()
	}
	if err := u.notifier.SendGiftReceipt(ctx, req.BuyerEmail, buyerName, in.AuthorEmail, manageURL); err != nil {
		metrics.EmailTotal.WithLabelValues("gift_buyer", "error").Inc()
		u.log.Error().Err(err).Str("buyer", req.BuyerEmail).Msg("gift receipt email failed")
	} else {
		metrics.EmailTotal.WithLabelValues("gift_buyer", "sent").Inc()
	}

	metrics.ActivationTotal.WithLabelValues("ok").Inc()
	return identity.ID, nil
}

// checkVariant cross-checks the payment witness when the reservation came
// from a checkout session: an activation token must never materialize an
// account for a purchase that was not gift-later.
func (u *giftUC) checkVariant(ctx context.Context, req *model.DeferredGiftRequest) error {
	if req.StripeSessionID == nil {
		return nil
	}
	rec, err := u.gifts.FindBySessionID(ctx, *req.StripeSessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if rec.Variant != model.VariantGiftLater {
		return domain.ErrWrongPurchaseVariant
	}
	return nil
}
