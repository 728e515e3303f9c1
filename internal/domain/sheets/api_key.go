package sheets

import "time"

type APIKey struct {
	CustomerID int64     `gorm:"primaryKey;autoIncrement:false;column:customer_id" json:"customer_id"`
	Key        string    `gorm:"not null;uniqueIndex;column:api_key" json:"api_key"`
	CreatedAt  time.Time `gorm:"not null;column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;column:updated_at" json:"updated_at"`
}

func (APIKey) TableName() string { return "api_key" }
