package realtime

import (
	"github.com/google/uuid"

	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

// SSEClient is one open event stream. UserID is the principal id, which is a
// customer id for administrators and an agent id for agents.
type SSEClient struct {
	ID       uuid.UUID
	UserID   int64
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	Logger   *logger.Logger
}

func (c *SSEClient) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
