package sheets

import "time"

type Sheet struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ManagerID   int64     `gorm:"not null;index;column:manager_id" json:"manager_id"`
	SheetNumber string    `gorm:"not null;column:sheet_number" json:"sheet_number"`
	SheetName   string    `gorm:"not null;column:sheet_name" json:"sheet_name"`
	CreatedAt   time.Time `gorm:"not null;column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;column:updated_at" json:"updated_at"`
}

func (Sheet) TableName() string { return "sheet" }

// SheetSummary is a sheet plus the number of agents it is shared with.
type SheetSummary struct {
	Sheet
	ShareCount int64 `json:"share_count"`
}
