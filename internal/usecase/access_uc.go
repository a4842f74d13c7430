package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AlexJaimeH/narra-sub000/internal/domain"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/model"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/ports/repository"
	"github.com/AlexJaimeH/narra-sub000/internal/infra/metrics"
)

// Compile-time check
var _ AccessUseCase = (*accessUC)(nil)

// AccessUseCase validates subscriber magic-link tokens and records every
// access attempt. Deliberately side-effecting on every successful call, not
// just on state transitions: the event log is a product requirement.
type AccessUseCase interface {
	Validate(ctx context.Context, in AccessInput) (*AccessGrant, error)
}

type AccessInput struct {
	AuthorID     string
	SubscriberID string
	Token        string
	StoryID      *string
	Source       string
	EventType    string
}

type AccessGrant struct {
	GrantedAt  time.Time
	Subscriber *model.Subscriber
}

type accessUC struct {
	subscribers repository.SubscriberRepository
	events      repository.AccessEventRepository
	log         *zerolog.Logger
}

func NewAccessUseCase(subscribers repository.SubscriberRepository, events repository.AccessEventRepository, logger *zerolog.Logger) *accessUC {
	return &accessUC{subscribers: subscribers, events: events, log: logger}
}

// Validate runs the per-subscriber state machine:
// pending -> confirmed (first successful validation, idempotent)
// confirmed -> unsubscribed (terminal, via the unsubscribe event type).
// Wrong token and wrong subscriber are both opaque to the caller.
func (u *accessUC) Validate(ctx context.Context, in AccessInput) (*AccessGrant, error) {
	if in.AuthorID == "" || in.SubscriberID == "" || in.Token == "" {
		return nil, domain.ErrInvalidArgument
	}

	sub, err := u.subscribers.FindByAuthorAndID(ctx, in.AuthorID, in.SubscriberID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.AccessValidations.WithLabelValues("not_found").Inc()
			return nil, domain.ErrNotFound
		}
		metrics.AccessValidations.WithLabelValues("error").Inc()
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(sub.AccessToken), []byte(in.Token)) != 1 {
		metrics.AccessValidations.WithLabelValues("forbidden").Inc()
		return nil, domain.ErrForbidden
	}
	if sub.Status == model.SubscriberUnsubscribed {
		metrics.AccessValidations.WithLabelValues("forbidden").Inc()
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	next := sub.Status
	switch {
	case in.EventType == model.AccessEventUnsubscribe:
		next = model.SubscriberUnsubscribed
	case sub.Status == model.SubscriberPending:
		next = model.SubscriberConfirmed
	}

	if err := u.subscribers.UpdateAccess(ctx, sub.ID, next, now, in.StoryID); err != nil {
		metrics.AccessValidations.WithLabelValues("error").Inc()
		return nil, err
	}
	sub.Status = next
	sub.LastAccessAt = &now
	sub.LastStoryID = in.StoryID

	// Always appended, even when no status transitioned. An append failure
	// is logged, not surfaced: access was already granted.
	ev := &model.AccessEvent{
		ID:           uuid.NewString(),
		SubscriberID: sub.ID,
		AuthorID:     in.AuthorID,
		StoryID:      in.StoryID,
		EventType:    in.EventType,
		Source:       in.Source,
		CreatedAt:    now,
	}
	if err := u.events.Append(ctx, ev); err != nil {
		metrics.AccessEventsLogged.WithLabelValues("error").Inc()
		u.log.Error().Err(err).Str("subscriber_id", sub.ID).Msg("access event append failed")
	} else {
		metrics.AccessEventsLogged.WithLabelValues("ok").Inc()
	}

	metrics.AccessValidations.WithLabelValues("ok").Inc()
	return &AccessGrant{GrantedAt: now, Subscriber: sub}, nil
}
