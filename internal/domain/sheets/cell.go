package sheets

import "time"

// Cell is one value at (sheet, field, row, owner). OwnerUserID is nil for
// cells the administrator wrote on their own rows. IDs are assigned by the
// database and only ever grow, which is what row ordering relies on.
type Cell struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ManagerID   int64     `gorm:"not null;column:manager_id" json:"manager_id"`
	SheetID     int64     `gorm:"not null;index:idx_cell_sheet_owner,priority:1;column:sheet_id" json:"sheet_id"`
	FieldID     int64     `gorm:"not null;index;column:field_id" json:"field_id"`
	RowKey      string    `gorm:"not null;column:row_key" json:"row_key"`
	OwnerUserID *int64    `gorm:"index:idx_cell_sheet_owner,priority:2;column:owner_user_id" json:"owner_user_id"`
	Value       string    `gorm:"not null;default:'';column:value" json:"value"`
	CreatedAt   time.Time `gorm:"not null;column:created_at" json:"created_at"`
}

func (Cell) TableName() string { return "cell" }

// OwnerKey folds a nullable owner into the value used for ordering and for
// the unique index: administrators sort (and collide) as owner 0.
func OwnerKey(owner *int64) int64 {
	if owner == nil {
		return 0
	}
	return *owner
}

func SameOwner(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
