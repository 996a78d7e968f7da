package email

import "context"

// Sender delivers rendered messages. The auth flows only depend on this
// interface; delivery specifics stay out of the core.
type Sender interface {
	Send(ctx context.Context, to, subject, html, text string) error
}
