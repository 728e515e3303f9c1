package sheets

import "time"

type ShareGrant struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ManagerID int64     `gorm:"not null;column:manager_id" json:"manager_id"`
	SheetID   int64     `gorm:"not null;uniqueIndex:idx_share_grant_sheet_user,priority:1;column:sheet_id" json:"sheet_id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_share_grant_sheet_user,priority:2;index;column:user_id" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at" json:"created_at"`
}

func (ShareGrant) TableName() string { return "share_grant" }
