package bus

import (
	"context"

	"github.com/yungbote/sheetshare-backend/internal/realtime"
)

// Bus fans sheet events out to every server instance. Each instance runs one
// forwarder that rebroadcasts into its local hub.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
