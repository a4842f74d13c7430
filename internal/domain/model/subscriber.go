package model

import "time"

type SubscriberStatus string

const (
	SubscriberPending      SubscriberStatus = "pending"
	SubscriberConfirmed    SubscriberStatus = "confirmed"
	SubscriberUnsubscribed SubscriberStatus = "unsubscribed"
)

// Subscriber is a per-author reader. Its access token is minted by the
// publishing system; this backend only validates it.
type Subscriber struct {
	ID           string
	AuthorID     string
	Name         string
	Email        string
	AccessToken  string
	Status       SubscriberStatus
	LastAccessAt *time.Time
	LastStoryID  *string
	CreatedAt    time.Time
}

// Access event types recorded by the validator.
const (
	AccessEventRead        = "story_read"
	AccessEventConfirm     = "confirm"
	AccessEventUnsubscribe = "unsubscribe"
)

// AccessEvent is an append-only audit row written on every validated access,
// whether or not the subscriber's status transitioned.
type AccessEvent struct {
	ID           string
	SubscriberID string
	AuthorID     string
	StoryID      *string
	EventType    string
	Source       string
	CreatedAt    time.Time
}
