package mail

import (
	"context"
	"fmt"

	"github.com/AlexJaimeH/narra-sub000/internal/domain/ports/adapter"
)

// Ensure implementation satisfies the port.
var _ adapter.Notifier = (*Notifier)(nil)

// Notifier composes the transactional emails and hands them to the mailer.
type Notifier struct {
	mailer adapter.Mailer
}

func NewNotifier(mailer adapter.Mailer) *Notifier {
	return &Notifier{mailer: mailer}
}

func (n *Notifier) SendWelcome(ctx context.Context, to, name, magicLink string) error {
	return n.mailer.Deliver(ctx, welcomeMessage(to, name, magicLink))
}

func (n *Notifier) SendGiftRecipient(ctx context.Context, to, name, buyerName, giftMessage, magicLink string) error {
	return n.mailer.Deliver(ctx, giftRecipientMessage(to, name, buyerName, giftMessage, magicLink))
}

func (n *Notifier) SendGiftReceipt(ctx context.Context, to, buyerName, recipientEmail, manageURL string) error {
	return n.mailer.Deliver(ctx, giftReceiptMessage(to, buyerName, recipientEmail, manageURL))
}

func (n *Notifier) SendActivationInvite(ctx context.Context, to, activationURL string) error {
	return n.mailer.Deliver(ctx, activationInviteMessage(to, activationURL))
}

func greetName(name string) string {
	if name == "" {
		return "Hola"
	}
	return fmt.Sprintf("Hola %s", name)
}
