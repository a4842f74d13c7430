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
var _ ProvisionUseCase = (*provisionUC)(nil)

// ProvisionUseCase turns a verified, not-yet-processed purchase into a
// usable identity.
type ProvisionUseCase interface {
	// ProvisionSelf provisions the buyer's own account and emails them the
	// magic link.
	ProvisionSelf(ctx context.Context, p model.SelfPurchase) (string, error)
	// ProvisionGiftNow provisions the recipient's account, emails the
	// recipient the magic link and the buyer their management URL.
	ProvisionGiftNow(ctx context.Context, p model.GiftNowPurchase) (string, error)
	// ProvisionManual is the ops path: no checkout session backs it, so
	// the witness is keyed by a synthetic reference.
	ProvisionManual(ctx context.Context, purchaseType, authorEmail, authorName, buyerEmail string) (string, error)
}

type provisionUC struct {
	identity  adapter.IdentityProvider
	profiles  repository.ProfileRepository
	mgmt      repository.ManagementTokenRepository
	gifts     repository.GiftRepository
	notifier  adapter.Notifier
	manageURL string
	log       *zerolog.Logger
}

func NewProvisionUseCase(
	identity adapter.IdentityProvider,
	profiles repository.ProfileRepository,
	mgmt repository.ManagementTokenRepository,
	gifts repository.GiftRepository,
	notifier adapter.Notifier,
	manageURL string,
	logger *zerolog.Logger,
) *provisionUC {
	return &provisionUC{
		identity:  identity,
		profiles:  profiles,
		mgmt:      mgmt,
		gifts:     gifts,
		notifier:  notifier,
		manageURL: manageURL,
		log:       logger,
	}
}

func (u *provisionUC) ProvisionSelf(ctx context.Context, p model.SelfPurchase) (string, error) {
	userID, err := u.provision(ctx, provisionInput{
		paymentRef:     p.SessionRef,
		variant:        model.VariantSelf,
		recipientEmail: p.AuthorEmail,
		recipientName:  p.AuthorName,
		buyerEmail:     p.AuthorEmail, // buyer = recipient for self-purchases
		buyerName:      p.AuthorName,
	})
	if err != nil {
		return "", err
	}
	metrics.ProvisionTotal.WithLabelValues(string(model.VariantSelf), "ok").Inc()
	return userID, nil
}

func (u *provisionUC) ProvisionGiftNow(ctx context.Context, p model.GiftNowPurchase) (string, error) {
	userID, err := u.provision(ctx, provisionInput{
		paymentRef:     p.SessionRef,
		variant:        model.VariantGiftNow,
		recipientEmail: p.RecipientEmail,
		recipientName:  p.RecipientName,
		buyerEmail:     p.BuyerEmail,
		buyerName:      p.BuyerName,
		giftMessage:    p.GiftMessage,
	})
	if err != nil {
		return "", err
	}
	metrics.ProvisionTotal.WithLabelValues(string(model.VariantGiftNow), "ok").Inc()
	return userID, nil
}

func (u *provisionUC) ProvisionManual(ctx context.Context, purchaseType, authorEmail, authorName, buyerEmail string) (string, error) {
	if authorEmail == "" {
		return "", domain.ErrInvalidArgument
	}
	ref := "manual_" + uuid.NewString()
	switch purchaseType {
	case "self", "":
		return u.ProvisionSelf(ctx, model.SelfPurchase{
			SessionRef:  ref,
			AuthorEmail: authorEmail,
			AuthorName:  authorName,
		})
	case "gift":
		if buyerEmail == "" {
			return "", domain.ErrInvalidArgument
		}
		return u.ProvisionGiftNow(ctx, model.GiftNowPurchase{
			SessionRef:     ref,
			RecipientEmail: authorEmail,
			RecipientName:  authorName,
			BuyerEmail:     buyerEmail,
		})
	default:
		return "", domain.ErrInvalidArgument
	}
}

type provisionInput struct {
	paymentRef     string
	variant        model.PurchaseVariant
	recipientEmail string
	recipientName  string
	buyerEmail     string
	buyerName      string
	giftMessage    string
}

// provision runs the orchestration: availability check, identity, profile,
// settings, management token, witness, magic link, notifications. Identity
// creation happens before the witness write so a crash between them is
// recoverable on the next retry.
func (u *provisionUC) provision(ctx context.Context, in provisionInput) (string, error) {
	identity, err := u.createAccount(ctx, in.recipientEmail, in.recipientName)
	if err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyRegistered) {
			// The email exists but no witness does for this reference:
			// either a genuine duplicate signup or the crash window between
			// identity creation and witness persistence. Operators triage.
			metrics.ProvisionAnomalies.Inc()
			metrics.ProvisionTotal.WithLabelValues(string(in.variant), "duplicate_email").Inc()
			u.log.Error().
				Str("email", in.recipientEmail).
				Str("payment_ref", in.paymentRef).
				Msg("recipient email already registered; possible orphaned identity")
		} else {
			metrics.ProvisionTotal.WithLabelValues(string(in.variant), "error").Inc()
		}
		return "", err
	}

	mgmtToken, err := u.issueManagementToken(ctx, identity.ID, in.buyerEmail)
	if err != nil {
		metrics.ProvisionTotal.WithLabelValues(string(in.variant), "error").Inc()
		return "", fmt.Errorf("issue management token: %w", err)
	}

	accountID := identity.ID
	rec := &model.GiftRecord{
		ID:              uuid.NewString(),
		StripeSessionID: in.paymentRef,
		Variant:         in.variant,
		RecipientEmail:  in.recipientEmail,
		RecipientName:   in.recipientName,
		BuyerEmail:      in.buyerEmail,
		BuyerName:       in.buyerName,
		GiftMessage:     in.giftMessage,
		AccountID:       &accountID,
		CreatedAt:       time.Now(),
	}
	if err := u.gifts.Insert(ctx, rec); err != nil {
		metrics.ProvisionTotal.WithLabelValues(string(in.variant), "error").Inc()
		return "", fmt.Errorf("persist gift record: %w", err)
	}

	u.notify(ctx, in, identity, mgmtToken)
	return identity.ID, nil
}

// createAccount covers the shared identity+profile+settings steps used by
// both immediate provisioning and deferred gift materialization.
func (u *provisionUC) createAccount(ctx context.Context, email, name string) (*model.Identity, error) {
	if _, err := u.identity.FindUserByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailAlreadyRegistered
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check email availability: %w", err)
	}

	password, err := generatePassword()
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	identity, err := u.identity.CreateUser(ctx, email, password, false)
	if err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}

	displayName := name
	if displayName == "" {
		displayName = email
	}
	profile := &model.Profile{
		ID:          identity.ID,
		Email:       email,
		DisplayName: displayName,
		Tier:        model.TierLifetime,
		CreatedAt:   time.Now(),
	}
	if err := u.profiles.Insert(ctx, profile); err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}

	// Settings are a soft dependency: the profile is usable without them.
	if err := u.profiles.InsertSettings(ctx, model.DefaultSettings(identity.ID, displayName)); err != nil {
		u.log.Warn().Err(err).Str("profile_id", identity.ID).Msg("settings creation failed; continuing")
	}

	return identity, nil
}

func (u *provisionUC) issueManagementToken(ctx context.Context, accountID, buyerEmail string) (string, error) {
	token, err := generateToken(40)
	if err != nil {
		return "", err
	}
	mt := &model.ManagementToken{
		ID:         uuid.NewString(),
		Token:      token,
		AccountID:  accountID,
		BuyerEmail: buyerEmail,
		CreatedAt:  time.Now(),
	}
	if err := u.mgmt.Insert(ctx, mt); err != nil {
		return "", err
	}
	return token, nil
}

// notify generates the magic link and dispatches terminal emails. By this
// point every durable write has landed, so failures here are logged and
// swallowed: support can resend an email, but a rolled-back account cannot
// be told apart from one that never existed.
func (u *provisionUC) notify(ctx context.Context, in provisionInput, identity *model.Identity, mgmtToken string) {
	link, err := u.identity.GenerateMagicLink(ctx, identity.Email)
	if err != nil {
		u.log.Error().Err(err).Str("email", identity.Email).Msg("magic link generation failed")
		link = ""
	}

	switch in.variant {
	case model.VariantSelf:
		u.send(ctx, "welcome", func() error {
			return u.notifier.SendWelcome(ctx, in.recipientEmail, in.recipientName, link)
		})
	case model.VariantGiftNow:
		u.send(ctx, "gift_recipient", func() error {
			return u.notifier.SendGiftRecipient(ctx, in.recipientEmail, in.recipientName, in.buyerName, in.giftMessage, link)
		})
		u.send(ctx, "gift_buyer", func() error {
			return u.notifier.SendGiftReceipt(ctx, in.buyerEmail, in.buyerName, in.recipientEmail, u.manageURL+"?token="+mgmtToken)
		})
	}
}

func (u *provisionUC) send(ctx context.Context, kind string, fn func() error) {
	if err := fn(); err != nil {
		metrics.EmailTotal.WithLabelValues(kind, "error").Inc()
		u.log.Error().Err(err).Str("kind", kind).Msg("notification email failed")
		return
	}
	metrics.EmailTotal.WithLabelValues(kind, "sent").Inc()
}
