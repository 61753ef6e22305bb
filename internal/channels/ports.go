package channels

import "context"

// Receipt is the delivery receipt returned by every channel send.
// Path is only set by the console email transport (outbox artifact).
type Receipt struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
	To     string `json:"to"`
	Path   string `json:"path,omitempty"`
}

type SMSSender interface {
	Send(ctx context.Context, to, body string) (Receipt, error)
}

type EmailSender interface {
	Send(ctx context.Context, toName, toAddr, subject, body string) (Receipt, error)
	// Compose writes the outbox artifact without sending anything.
	Compose(toName, toAddr, subject, body string) (string, error)
}
