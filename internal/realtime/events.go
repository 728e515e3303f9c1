package realtime

import (
	"strconv"
	"strings"
)

type SSEEvent string

const (
	SSEEventSheetCellChanged   SSEEvent = "SheetCellChanged"
	SSEEventSheetRowDeleted    SSEEvent = "SheetRowDeleted"
	SSEEventSheetFieldsChanged SSEEvent = "SheetFieldsChanged"
	SSEEventSheetDeleted       SSEEvent = "SheetDeleted"
	SSEEventSheetShared        SSEEvent = "SheetShared"
	SSEEventSheetUnshared      SSEEvent = "SheetUnshared"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`

	// Subscribe and Unsubscribe are applied by the hub to every client the
	// message reaches. They are stripped before the message is written out.
	Subscribe   []string `json:"subscribe,omitempty"`
	Unsubscribe []string `json:"unsubscribe,omitempty"`
}

const sheetChannelPrefix = "sheet:"

func SheetChannel(sheetID int64) string {
	return sheetChannelPrefix + strconv.FormatInt(sheetID, 10)
}

// SheetAdminChannel carries every row event of a sheet. Only the
// administrator that owns the sheet subscribes to it.
func SheetAdminChannel(sheetID int64) string {
	return SheetChannel(sheetID) + ":admin"
}

// SheetOwnerChannel carries row events for the rows one agent owns.
func SheetOwnerChannel(sheetID, agentID int64) string {
	return SheetChannel(sheetID) + ":owner:" + strconv.FormatInt(agentID, 10)
}

// UserChannel carries events addressed to one principal, such as a new
// sharing grant the open stream is not subscribed to yet.
func UserChannel(role string, userID int64) string {
	return "user:" + role + ":" + strconv.FormatInt(userID, 10)
}

// SheetIDFromChannel parses a "sheet:<id>" channel name.
func SheetIDFromChannel(channel string) (int64, bool) {
	if !strings.HasPrefix(channel, sheetChannelPrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(channel, sheetChannelPrefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
