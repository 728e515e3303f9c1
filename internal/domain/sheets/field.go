package sheets

import (
	"fmt"
	"strings"
	"time"
)

type FieldType string

const (
	// FieldTypeStatic holds one value per owner: only the owner's first row
	// may carry it.
	FieldTypeStatic  FieldType = "static"
	FieldTypeDynamic FieldType = "dynamic"
)

func ParseFieldType(s string) (FieldType, error) {
	switch FieldType(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return FieldTypeStatic, nil
	case FieldTypeStatic:
		return FieldTypeStatic, nil
	case FieldTypeDynamic:
		return FieldTypeDynamic, nil
	default:
		return "", fmt.Errorf("unknown field type %q", s)
	}
}

type DisplayFormat string

const (
	FormatText     DisplayFormat = "text"
	FormatNumber   DisplayFormat = "number"
	FormatDate     DisplayFormat = "date"
	FormatTime     DisplayFormat = "time"
	FormatDateTime DisplayFormat = "datetime"
	FormatCheckbox DisplayFormat = "checkbox"
)

func ParseDisplayFormat(s string) (DisplayFormat, error) {
	f := DisplayFormat(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return FormatText, nil
	case FormatText, FormatNumber, FormatDate, FormatTime, FormatDateTime, FormatCheckbox:
		return f, nil
	default:
		return "", fmt.Errorf("unknown display format %q", s)
	}
}

const DefaultDisplayWidth = 150

type Field struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	ManagerID     int64         `gorm:"not null;column:manager_id" json:"manager_id"`
	SheetID       int64         `gorm:"not null;index;column:sheet_id" json:"sheet_id"`
	Title         string        `gorm:"not null;column:title" json:"title"`
	Type          FieldType     `gorm:"not null;column:type" json:"type"`
	DisplayFormat DisplayFormat `gorm:"not null;column:display_format" json:"display_format"`
	DisplayWidth  int           `gorm:"not null;column:display_width" json:"display_width"`
	CreatedAt     time.Time     `gorm:"not null;column:created_at" json:"created_at"`
}

func (Field) TableName() string { return "field" }

func (f *Field) IsStatic() bool { return f != nil && f.Type == FieldTypeStatic }
