package adapter

import "context"

// Notifier dispatches the transactional emails sent at each terminal step
// of the acquisition sagas. Delivery failures are the caller's to log; a
// durable state change is never rolled back over a lost email.
type Notifier interface {
	// SendWelcome greets a self-purchase owner with their magic link.
	SendWelcome(ctx context.Context, to, name, magicLink string) error
	// SendGiftRecipient greets a gifted recipient with the buyer's message
	// and their magic link.
	SendGiftRecipient(ctx context.Context, to, name, buyerName, giftMessage, magicLink string) error
	// SendGiftReceipt tells the buyer their gift is live and links the
	// management page.
	SendGiftReceipt(ctx context.Context, to, buyerName, recipientEmail, manageURL string) error
	// SendActivationInvite emails a gift-later buyer their activation URL.
	SendActivationInvite(ctx context.Context, to, activationURL string) error
}
