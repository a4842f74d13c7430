package adapter

import (
	"context"

	"github.com/AlexJaimeH/narra-sub000/internal/domain/model"
)

// CheckoutProvider is the hex port for the payment processor. Only session
// retrieval is in scope: a session is retrieved, never consumed, so repeat
// fetches are harmless.
type CheckoutProvider interface {
	Name() string
	// RetrieveSession fetches one checkout attempt by its opaque reference.
	RetrieveSession(ctx context.Context, sessionID string) (*model.CheckoutSession, error)
}
