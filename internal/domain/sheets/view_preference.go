package sheets

import "time"

type ViewType int

const (
	ViewCard  ViewType = 0
	ViewTable ViewType = 1
)

func (v ViewType) Valid() bool { return v == ViewCard || v == ViewTable }

type ViewPreference struct {
	ManagerID int64     `gorm:"primaryKey;autoIncrement:false;column:manager_id" json:"manager_id"`
	ViewType  ViewType  `gorm:"not null;default:0;column:view_type" json:"view_type"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at" json:"updated_at"`
}

func (ViewPreference) TableName() string { return "sheet_view_preference" }
