package model

import "time"

// Identity is the authenticated principal held by the identity provider.
// We only ever see the provider's view of it.
type Identity struct {
	ID    string
	Email string
}

// Profile is the product-side account row written next to a new identity.
type Profile struct {
	ID          string // identity id
	Email       string
	DisplayName string
	Tier        string
	CreatedAt   time.Time
}

const TierLifetime = "lifetime"

// ProfileSettings is the soft dependency of provisioning: a profile is
// usable without it, so a failed settings insert never aborts the saga.
type ProfileSettings struct {
	ProfileID         string
	Language          string
	AIAssistEnabled   bool
	AuthorDisplayName string
	StoriesPublished  int
	CreatedAt         time.Time
}

// DefaultSettings returns the explicit default configuration written for
// every newly provisioned account.
func DefaultSettings(profileID, authorName string) *ProfileSettings {
	return &ProfileSettings{
		ProfileID:         profileID,
		Language:          "es",
		AIAssistEnabled:   true,
		AuthorDisplayName: authorName,
		StoriesPublished:  0,
		CreatedAt:         time.Now(),
	}
}
