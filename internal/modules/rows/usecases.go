package rows

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/yungbote/sheetshare-backend/internal/data/repos"
	"github.com/yungbote/sheetshare-backend/internal/observability"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

type UsecasesDeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	Sheets repos.SheetRepo
	Fields repos.FieldRepo
	Cells  repos.CellRepo
	Shares repos.ShareGrantRepo

	// Optional.
	Metrics *observability.Metrics
}

// Usecases is the row reconciliation engine. It keeps no state between calls;
// every operation reads through the repositories.
type Usecases struct {
	deps   UsecasesDeps
	tracer trace.Tracer
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	deps.Log = deps.Log.With("module", "rows")
	return Usecases{deps: deps, tracer: otel.Tracer("sheetshare/rows")}
}

func (u Usecases) WithLog(log *logger.Logger) Usecases {
	u.deps.Log = log
	return u
}

func (u Usecases) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return u.tracer.Start(ctx, "rows."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// inTx runs fn inside the caller's transaction when there is one, otherwise in
// a new transaction on the engine's handle.
func (u Usecases) inTx(dbc dbctx.Context, fn func(dbc dbctx.Context) error) error {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
			return fn(dbc.WithTx(tx))
		})
	}
	return u.deps.DB.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbc.WithTx(tx))
	})
}
