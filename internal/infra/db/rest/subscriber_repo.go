package rest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AlexJaimeH/narra-sub000/internal/domain"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/model"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/ports/repository"
)

// Ensure implementations satisfy the interfaces.
var (
	_ repository.SubscriberRepository  = (*subscriberRepo)(nil)
	_ repository.AccessEventRepository = (*accessEventRepo)(nil)
)

type subscriberRepo struct {
	client *Client
}

func NewSubscriberRepo(client *Client) repository.SubscriberRepository {
	return &subscriberRepo{client: client}
}

type subscriberRow struct {
	ID           string     `json:"id"`
	AuthorID     string     `json:"author_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	AccessToken  string     `json:"access_token"`
	Status       string     `json:"status"`
	LastAccessAt *time.Time `json:"last_access_at"`
	LastStoryID  *string    `json:"last_story_id"`
	CreatedAt    time.Time  `json:"created_at"`
}

// FindByAuthorAndID filters on both ids; a subscriber belonging to a
// different author is indistinguishable from a missing one.
func (r *subscriberRepo) FindByAuthorAndID(ctx context.Context, authorID, subscriberID string) (*model.Subscriber, error) {
	filters := map[string]string{"id": subscriberID, "author_id": authorID}
	var rows []subscriberRow
	if err := r.client.Select(ctx, "subscribers", filters, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	row := rows[0]
	return &model.Subscriber{
		ID:           row.ID,
		AuthorID:     row.AuthorID,
		Name:         row.Name,
		Email:        row.Email,
		AccessToken:  row.AccessToken,
		Status:       model.SubscriberStatus(row.Status),
		LastAccessAt: row.LastAccessAt,
		LastStoryID:  row.LastStoryID,
		CreatedAt:    row.CreatedAt,
	}, nil
}

func (r *subscriberRepo) UpdateAccess(ctx context.Context, subscriberID string, status model.SubscriberStatus, at time.Time, storyID *string) error {
	patch := map[string]interface{}{
		"last_access_at": at.Format(time.RFC3339),
	}
	if status != "" {
		patch["status"] = string(status)
	}
	if storyID != nil {
		patch["last_story_id"] = *storyID
	}
	return r.client.Update(ctx, "subscribers", map[string]string{"id": subscriberID}, patch)
}

type accessEventRepo struct {
	client *Client
}

func NewAccessEventRepo(client *Client) repository.AccessEventRepository {
	return &accessEventRepo{client: client}
}

type accessEventRow struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriber_id"`
	AuthorID     string    `json:"author_id"`
	StoryID      *string   `json:"story_id"`
	EventType    string    `json:"event_type"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *accessEventRepo) Append(ctx context.Context, ev *model.AccessEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	row := accessEventRow{
		ID:           ev.ID,
		SubscriberID: ev.SubscriberID,
		AuthorID:     ev.AuthorID,
		StoryID:      ev.StoryID,
		EventType:    ev.EventType,
		Source:       ev.Source,
		CreatedAt:    ev.CreatedAt,
	}
	return r.client.Insert(ctx, "subscriber_access_log", row, nil)
}
