package services

import (
	"context"

	"github.com/yungbote/sheetshare-backend/internal/domain/auth"
	"github.com/yungbote/sheetshare-backend/internal/realtime"
)

// SheetNotifier tells open streams that a sheet changed. Delivery is best
// effort; a lost event only delays a client's refresh.
type SheetNotifier interface {
	CellChanged(ctx context.Context, sheetID int64, ev CellChangedEvent)
	RowDeleted(ctx context.Context, sheetID int64, rowKey string, owner *int64)
	FieldsChanged(ctx context.Context, sheetID int64)
	SheetDeleted(ctx context.Context, sheetID int64)
	SheetShared(ctx context.Context, sheetID, userID int64)
	SheetUnshared(ctx context.Context, sheetID, userID int64)
}

// StreamChannels lists the channels p listens on for one sheet. Row events
// travel on the administrator channel and on the writing agent's owner
// channel, so an agent never sees rows it does not own.
func StreamChannels(p auth.Principal, sheetID int64) []string {
	if p.IsAdministrator() {
		return []string{realtime.SheetChannel(sheetID), realtime.SheetAdminChannel(sheetID)}
	}
	return []string{realtime.SheetChannel(sheetID), realtime.SheetOwnerChannel(sheetID, p.ID)}
}

func rowChannels(sheetID int64, owner *int64) []string {
	if owner == nil {
		return []string{realtime.SheetAdminChannel(sheetID)}
	}
	return []string{realtime.SheetAdminChannel(sheetID), realtime.SheetOwnerChannel(sheetID, *owner)}
}

type CellChangedEvent struct {
	SheetID     int64  `json:"sheet_id"`
	FieldID     int64  `json:"field_id"`
	CellID      int64  `json:"cell_id"`
	RowKey      string `json:"row_key"`
	OwnerUserID *int64 `json:"user_id"`
	Value       string `json:"value"`
	Action      string `json:"action"`
}

type sheetNotifier struct {
	emit SSEEmitter
}

func NewSheetNotifier(emit SSEEmitter) SheetNotifier {
	return &sheetNotifier{emit: emit}
}

func (n *sheetNotifier) send(ctx context.Context, msg realtime.SSEMessage) {
	if n == nil || n.emit == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	n.emit.Emit(ctx, msg)
}

func (n *sheetNotifier) CellChanged(ctx context.Context, sheetID int64, ev CellChangedEvent) {
	ev.SheetID = sheetID
	for _, ch := range rowChannels(sheetID, ev.OwnerUserID) {
		n.send(ctx, realtime.SSEMessage{Channel: ch, Event: realtime.SSEEventSheetCellChanged, Data: ev})
	}
}

func (n *sheetNotifier) RowDeleted(ctx context.Context, sheetID int64, rowKey string, owner *int64) {
	data := map[string]any{
		"sheet_id": sheetID,
		"row_key":  rowKey,
		"user_id":  owner,
	}
	for _, ch := range rowChannels(sheetID, owner) {
		n.send(ctx, realtime.SSEMessage{Channel: ch, Event: realtime.SSEEventSheetRowDeleted, Data: data})
	}
}

func (n *sheetNotifier) FieldsChanged(ctx context.Context, sheetID int64) {
	n.send(ctx, realtime.SSEMessage{
		Channel: realtime.SheetChannel(sheetID),
		Event:   realtime.SSEEventSheetFieldsChanged,
		Data:    map[string]any{"sheet_id": sheetID},
	})
}

func (n *sheetNotifier) SheetDeleted(ctx context.Context, sheetID int64) {
	n.send(ctx, realtime.SSEMessage{
		Channel: realtime.SheetChannel(sheetID),
		Event:   realtime.SSEEventSheetDeleted,
		Data:    map[string]any{"sheet_id": sheetID},
	})
}

// SheetShared subscribes the agent's open streams to the sheet.
func (n *sheetNotifier) SheetShared(ctx context.Context, sheetID, userID int64) {
	n.send(ctx, realtime.SSEMessage{
		Channel:   realtime.UserChannel(auth.RoleAgent.String(), userID),
		Event:     realtime.SSEEventSheetShared,
		Data:      map[string]any{"sheet_id": sheetID},
		Subscribe: StreamChannels(auth.Principal{ID: userID, Role: auth.RoleAgent}, sheetID),
	})
}

// SheetUnshared drops the sheet from the agent's open streams.
func (n *sheetNotifier) SheetUnshared(ctx context.Context, sheetID, userID int64) {
	n.send(ctx, realtime.SSEMessage{
		Channel:     realtime.UserChannel(auth.RoleAgent.String(), userID),
		Event:       realtime.SSEEventSheetUnshared,
		Data:        map[string]any{"sheet_id": sheetID},
		Unsubscribe: StreamChannels(auth.Principal{ID: userID, Role: auth.RoleAgent}, sheetID),
	})
}

type noopSheetNotifier struct{}

func NewNoopSheetNotifier() SheetNotifier { return noopSheetNotifier{} }

func (noopSheetNotifier) CellChanged(context.Context, int64, CellChangedEvent) {}
func (noopSheetNotifier) RowDeleted(context.Context, int64, string, *int64) {}
func (noopSheetNotifier) FieldsChanged(context.Context, int64) {}
func (noopSheetNotifier) SheetDeleted(context.Context, int64) {}
func (noopSheetNotifier) SheetShared(context.Context, int64, int64) {}
func (noopSheetNotifier) SheetUnshared(context.Context, int64, int64) {}
