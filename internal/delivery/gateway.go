package delivery

import "context"

// Notification tells one giver who they are buying for. It carries the
// giver's contact details and only the recipient's display name: the
// recipient is never contacted, so their address has no business here.
type Notification struct {
	GiverName     string
	GiverEmail    string
	GiverPhone    string
	RecipientName string
}

// Gateway delivers one notification per giver over some channel.
// Implementations report how many notifications were actually sent;
// givers without usable contact details are skipped, not errors.
type Gateway interface {
	Deliver(ctx context.Context, notifications []Notification) (sent int, err error)
}
