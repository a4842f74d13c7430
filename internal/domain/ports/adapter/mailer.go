package adapter

import "context"

// Message is one transactional email with both HTML and plain-text bodies.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer is the hex port for outbound email delivery.
type Mailer interface {
	Deliver(ctx context.Context, msg *Message) error
}
