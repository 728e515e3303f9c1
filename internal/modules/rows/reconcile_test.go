package rows

import (
	"math/rand"
	"testing"
	"time"

	types "github.com/yungbote/sheetshare-backend/internal/domain"
)

func ptr(v int64) *int64 { return &v }

func cell(id, fieldID int64, rowKey string, owner *int64, value string) *types.Cell {
	return &types.Cell{
		ID:          id,
		SheetID:     1,
		FieldID:     fieldID,
		RowKey:      rowKey,
		OwnerUserID: owner,
		Value:       value,
		CreatedAt:   time.Unix(1_700_000_000+id, 0).UTC(),
	}
}

func TestReconcileGroupsByRowAndOwner(t *testing.T) {
	cells := []*types.Cell{
		cell(9, 2, "k1", nil, "b"),
		cell(4, 1, "k1", nil, "a"),
		cell(6, 1, "k1", ptr(7), "agent"),
	}
	rows := Reconcile(cells)
	if len(rows) != 2 {
		t.Fatalf("rows: want=2 got=%d", len(rows))
	}

	admin := rows[0]
	if admin.OwnerUserID != nil || admin.RowKey != "k1" {
		t.Fatalf("first row should be the admin row, got %+v", admin)
	}
	if admin.MinCellID != 4 {
		t.Fatalf("MinCellID: want=4 got=%d", admin.MinCellID)
	}
	if !admin.CreatedAt.Equal(cells[1].CreatedAt) {
		t.Fatalf("CreatedAt should come from the earliest cell: want=%s got=%s", cells[1].CreatedAt, admin.CreatedAt)
	}
	if admin.Cells[1].Value != "a" || admin.Cells[2].Value != "b" || admin.Cells[2].ID != 9 {
		t.Fatalf("admin cells: unexpected %+v", admin.Cells)
	}

	agent := rows[1]
	if agent.OwnerUserID == nil || *agent.OwnerUserID != 7 || len(agent.Cells) != 1 {
		t.Fatalf("agent row must not merge with the admin row: %+v", agent)
	}
}

func TestReconcileSortOrder(t *testing.T) {
	cells := []*types.Cell{
		cell(10, 1, "admin", nil, ""),
		cell(7, 1, "two", ptr(2), ""),
		cell(1, 1, "five-a", ptr(5), ""),
		cell(3, 1, "five-b", ptr(5), ""),
	}
	want := []struct {
		owner int64
		min   int64
	}{{0, 10}, {2, 7}, {5, 1}, {5, 3}}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]*types.Cell(nil), cells...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		rows := Reconcile(shuffled)
		if len(rows) != len(want) {
			t.Fatalf("rows: want=%d got=%d", len(want), len(rows))
		}
		for j, w := range want {
			got := rows[j]
			owner := int64(0)
			if got.OwnerUserID != nil {
				owner = *got.OwnerUserID
			}
			if owner != w.owner || got.MinCellID != w.min {
				t.Fatalf("position %d: want=%d/%d got=%d/%d", j, w.owner, w.min, owner, got.MinCellID)
			}
		}
	}
}

func TestReconcileMinCellIDIndependentOfOrder(t *testing.T) {
	forward := Reconcile([]*types.Cell{
		cell(2, 1, "k", ptr(3), "x"),
		cell(5, 2, "k", ptr(3), "y"),
		cell(8, 3, "k", ptr(3), "z"),
	})
	backward := Reconcile([]*types.Cell{
		cell(8, 3, "k", ptr(3), "z"),
		cell(5, 2, "k", ptr(3), "y"),
		cell(2, 1, "k", ptr(3), "x"),
	})
	if forward[0].MinCellID != 2 || backward[0].MinCellID != 2 {
		t.Fatalf("MinCellID: forward=%d backward=%d", forward[0].MinCellID, backward[0].MinCellID)
	}
	if !forward[0].CreatedAt.Equal(backward[0].CreatedAt) {
		t.Fatalf("CreatedAt differs by input order")
	}
}

func TestReconcileEmpty(t *testing.T) {
	if rows := Reconcile(nil); len(rows) != 0 {
		t.Fatalf("want no rows, got %d", len(rows))
	}
}

func TestFirstRows(t *testing.T) {
	rows := Reconcile([]*types.Cell{
		cell(1, 1, "a1", nil, ""),
		cell(4, 1, "a2", nil, ""),
		cell(2, 1, "g1", ptr(9), ""),
		cell(3, 1, "g2", ptr(9), ""),
	})
	first := FirstRows(rows)
	if len(first) != 2 {
		t.Fatalf("FirstRows: want=2 got=%d", len(first))
	}
	if !first[IdentityOf("a1", nil)] || !first[IdentityOf("g1", ptr(9))] {
		t.Fatalf("FirstRows: unexpected %+v", first)
	}
	if first[IdentityOf("g2", ptr(9))] {
		t.Fatalf("FirstRows: g2 is not a first row")
	}
}
