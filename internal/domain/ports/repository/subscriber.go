package repository

import (
	"context"
	"time"

	"github.com/AlexJaimeH/narra-sub000/internal/domain/model"
)

// SubscriberRepository reads and updates reader records. A subscriber is
// always fetched scoped to its author; a wrong author never matches.
type SubscriberRepository interface {
	FindByAuthorAndID(ctx context.Context, authorID, subscriberID string) (*model.Subscriber, error)
	// UpdateAccess writes last-access metadata and, when status is
	// non-empty, the new status in the same call.
	UpdateAccess(ctx context.Context, subscriberID string, status model.SubscriberStatus, at time.Time, storyID *string) error
}

// AccessEventRepository appends audit rows. Append failures are non-critical
// to the caller's success path.
type AccessEventRepository interface {
	Append(ctx context.Context, ev *model.AccessEvent) error
}
