package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/sheetshare-backend/internal/data/repos"
	"github.com/yungbote/sheetshare-backend/internal/data/repos/testutil"
	"github.com/yungbote/sheetshare-backend/internal/domain/auth"
	"github.com/yungbote/sheetshare-backend/internal/modules/rows"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/ctxutil"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
	"github.com/yungbote/sheetshare-backend/internal/realtime"
)

type fixture struct {
	db     *gorm.DB
	tx     *gorm.DB
	log    *logger.Logger
	sheets repos.SheetRepo
	fields repos.FieldRepo
	cells  repos.CellRepo
	shares repos.ShareGrantRepo
	agents repos.AgentRepo
	keys   repos.APIKeyRepo
	prefs  repos.ViewPreferenceRepo
	engine rows.Usecases
	events *recordingEmitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.DB(t)
	log := testutil.Logger(t)
	f := &fixture{
		db:     database,
		tx:     testutil.Tx(t, database),
		log:    log,
		sheets: repos.NewSheetRepo(database, log),
		fields: repos.NewFieldRepo(database, log),
		cells:  repos.NewCellRepo(database, log),
		shares: repos.NewShareGrantRepo(database, log),
		agents: repos.NewAgentRepo(database, log),
		keys:   repos.NewAPIKeyRepo(database, log),
		prefs:  repos.NewViewPreferenceRepo(database, log),
		events: &recordingEmitter{},
	}
	f.engine = rows.New(rows.UsecasesDeps{
		DB:     database,
		Log:    log,
		Sheets: f.sheets,
		Fields: f.fields,
		Cells:  f.cells,
		Shares: f.shares,
	})
	return f
}

// as returns a db context for p bound to the fixture's transaction.
func (f *fixture) as(p auth.Principal) dbctx.Context {
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{Principal: p})
	return dbctx.Context{Ctx: ctx, Tx: f.tx}
}

func (f *fixture) anonymous() dbctx.Context {
	return dbctx.Context{Ctx: context.Background(), Tx: f.tx}
}

func (f *fixture) notifier() SheetNotifier { return NewSheetNotifier(f.events) }

type recordingEmitter struct {
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	e.msgs = append(e.msgs, msg)
}

func (e *recordingEmitter) events() []realtime.SSEEvent {
	out := make([]realtime.SSEEvent, 0, len(e.msgs))
	for _, m := range e.msgs {
		out = append(out, m.Event)
	}
	return out
}

func (e *recordingEmitter) on(channel string) []realtime.SSEMessage {
	var out []realtime.SSEMessage
	for _, m := range e.msgs {
		if m.Channel == channel {
			out = append(out, m)
		}
	}
	return out
}
