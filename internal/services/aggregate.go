package services

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/sheetshare-backend/internal/data/repos"
	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/modules/rows"
	"github.com/yungbote/sheetshare-backend/internal/observability"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

const (
	aggregateUsernameKey  = "Username"
	aggregateUpdatedAtKey = "Updated_At"
	aggregateConcurrency  = 4
)

// SharedSheet is one sheet as seen by the external API: every row of every
// owner, with values keyed by column title.
type SharedSheet struct {
	SheetID   int64            `json:"sheet_id"`
	SheetName string           `json:"sheet_name"`
	Rows      []map[string]any `json:"rows"`
}

type AggregateService interface {
	// SharedCells authenticates the API key and returns every sheet of the
	// customer, newest first.
	SharedCells(dbc dbctx.Context, customerID int64, apiKey string) ([]SharedSheet, error)
}

type aggregateService struct {
	db        *gorm.DB
	log       *logger.Logger
	sheetRepo repos.SheetRepo
	fieldRepo repos.FieldRepo
	cellRepo  repos.CellRepo
	agentRepo repos.AgentRepo
	apiKeys   APIKeyService
	limiter   RateLimiter
	metrics   *observability.Metrics
}

func NewAggregateService(
	db *gorm.DB,
	log *logger.Logger,
	sheetRepo repos.SheetRepo,
	fieldRepo repos.FieldRepo,
	cellRepo repos.CellRepo,
	agentRepo repos.AgentRepo,
	apiKeys APIKeyService,
	limiter RateLimiter,
	metrics *observability.Metrics,
) AggregateService {
	if limiter == nil {
		limiter = NewNoopRateLimiter()
	}
	return &aggregateService{
		db:        db,
		log:       log.With("service", "AggregateService"),
		sheetRepo: sheetRepo,
		fieldRepo: fieldRepo,
		cellRepo:  cellRepo,
		agentRepo: agentRepo,
		apiKeys:   apiKeys,
		limiter:   limiter,
		metrics:   metrics,
	}
}

func (s *aggregateService) SharedCells(dbc dbctx.Context, customerID int64, apiKey string) ([]SharedSheet, error) {
	// Rejected keys count against the budget too.
	allowed, err := s.limiter.Allow(dbc.Ctx, "sharecells:"+strconv.FormatInt(customerID, 10))
	if err != nil {
		// Fail open.
		s.log.Warn("Rate limiter unavailable", "customer_id", customerID, "error", err)
		allowed = true
	}
	if !allowed {
		s.metrics.IncRateLimited()
		return nil, apierr.RateLimited("rate_limited", fmt.Errorf("too many requests, try again later"))
	}
	if err := s.apiKeys.Verify(dbc, customerID, apiKey); err != nil {
		return nil, err
	}

	sheets, err := s.sheetRepo.ListByManager(dbc, customerID)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	out := make([]SharedSheet, len(sheets))
	if len(sheets) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(dbc.Ctx)
	// A transaction is one connection; only fan out on the pool.
	if dbc.Tx != nil {
		g.SetLimit(1)
	} else {
		g.SetLimit(aggregateConcurrency)
	}
	for i, sheet := range sheets {
		g.Go(func() error {
			sub := dbctx.Context{Ctx: gctx, Tx: dbc.Tx}
			built, err := s.buildSheet(sub, sheet)
			if err != nil {
				return fmt.Errorf("sheet %d: %w", sheet.ID, err)
			}
			out[i] = built
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *aggregateService) buildSheet(dbc dbctx.Context, sheet *types.Sheet) (SharedSheet, error) {
	fields, err := s.fieldRepo.ListBySheet(dbc, sheet.ID)
	if err != nil {
		return SharedSheet{}, fmt.Errorf("list fields: %w", err)
	}
	cells, err := s.cellRepo.ListBySheet(dbc, sheet.ID)
	if err != nil {
		return SharedSheet{}, fmt.Errorf("list cells: %w", err)
	}
	rowList := rows.Reconcile(cells)
	names, err := agentNames(dbc, s.agentRepo, rowList)
	if err != nil {
		return SharedSheet{}, err
	}
	return SharedSheet{
		SheetID:   sheet.ID,
		SheetName: sheet.SheetName,
		Rows:      flattenRows(rowList, fields, names),
	}, nil
}

// flattenRows writes every column, empty when the row has no cell for it.
// Duplicate titles resolve to the later column.
func flattenRows(rowList []*rows.Row, fields []*types.Field, names map[int64]string) []map[string]any {
	out := make([]map[string]any, 0, len(rowList))
	for _, r := range rowList {
		flat := make(map[string]any, len(fields)+2)
		for _, f := range fields {
			v := ""
			if c, ok := r.Cells[f.ID]; ok {
				v = c.Value
			}
			flat[f.Title] = v
		}
		flat[aggregateUsernameKey] = displayName(r.OwnerUserID, names)
		flat[aggregateUpdatedAtKey] = r.CreatedAt.UTC().Format(time.RFC3339)
		out = append(out, flat)
	}
	return out
}
