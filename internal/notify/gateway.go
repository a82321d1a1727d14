package notify

import (
	"context"
)

// Gateway pushes a message to a chat. The status workflow treats it as an
// opaque channel: sends are best-effort, at-most-once, and never affect the
// outcome of the operation that triggered them.
type Gateway interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// NopGateway discards every message. Used in tests and when no bot token is
// configured.
type NopGateway struct{}

func (NopGateway) Send(ctx context.Context, chatID int64, text string) error {
	return nil
}
