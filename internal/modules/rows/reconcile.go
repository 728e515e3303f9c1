package rows

import (
	"cmp"
	"slices"
	"time"

	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/domain/sheets"
)

type CellValue struct {
	ID    int64  `json:"id"`
	Value string `json:"value"`
}

// Row is a logical row assembled from the cells that share a rowKey and an
// owner. MinCellID is the smallest cell id in the group and CreatedAt is that
// cell's timestamp.
type Row struct {
	RowKey      string
	OwnerUserID *int64
	CreatedAt   time.Time
	MinCellID   int64
	Cells       map[int64]CellValue
}

// Identity is the comparable form of (rowKey, ownerUserId). A null owner is
// kept distinct from any real user id.
type Identity struct {
	RowKey   string
	Owner    int64
	HasOwner bool
}

func IdentityOf(rowKey string, owner *int64) Identity {
	if owner == nil {
		return Identity{RowKey: rowKey}
	}
	return Identity{RowKey: rowKey, Owner: *owner, HasOwner: true}
}

func (r *Row) Identity() Identity { return IdentityOf(r.RowKey, r.OwnerUserID) }

// Reconcile groups cells into rows and returns them in display order. The
// result does not depend on the order cells are passed in, apart from which
// of two cells for the same (row, field) wins the map entry: the later one.
func Reconcile(cells []*types.Cell) []*Row {
	index := make(map[Identity]*Row)
	out := make([]*Row, 0)
	for _, c := range cells {
		if c == nil {
			continue
		}
		id := IdentityOf(c.RowKey, c.OwnerUserID)
		row, ok := index[id]
		if !ok {
			row = &Row{
				RowKey:      c.RowKey,
				OwnerUserID: copyOwner(c.OwnerUserID),
				CreatedAt:   c.CreatedAt,
				MinCellID:   c.ID,
				Cells:       make(map[int64]CellValue),
			}
			index[id] = row
			out = append(out, row)
		} else if c.ID < row.MinCellID {
			row.MinCellID = c.ID
			row.CreatedAt = c.CreatedAt
		}
		row.Cells[c.FieldID] = CellValue{ID: c.ID, Value: c.Value}
	}
	SortRows(out)
	return out
}

// SortRows orders by owner (administrator rows first, as owner 0), then by
// MinCellID. MinCellID is unique per row, so the order is total.
func SortRows(rows []*Row) {
	slices.SortStableFunc(rows, func(a, b *Row) int {
		if c := cmp.Compare(sheets.OwnerKey(a.OwnerUserID), sheets.OwnerKey(b.OwnerUserID)); c != 0 {
			return c
		}
		return cmp.Compare(a.MinCellID, b.MinCellID)
	})
}

// FirstRows maps each owner to the identity of that owner's chronologically
// first row.
func FirstRows(rows []*Row) map[Identity]bool {
	type best struct {
		id  Identity
		min int64
	}
	perOwner := make(map[int64]best)
	for _, r := range rows {
		key := sheets.OwnerKey(r.OwnerUserID)
		if cur, ok := perOwner[key]; !ok || r.MinCellID < cur.min {
			perOwner[key] = best{id: r.Identity(), min: r.MinCellID}
		}
	}
	out := make(map[Identity]bool, len(perOwner))
	for _, b := range perOwner {
		out[b.id] = true
	}
	return out
}

func copyOwner(owner *int64) *int64 {
	if owner == nil {
		return nil
	}
	v := *owner
	return &v
}
