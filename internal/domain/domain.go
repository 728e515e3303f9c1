package domain

import (
	"github.com/yungbote/sheetshare-backend/internal/domain/auth"
	"github.com/yungbote/sheetshare-backend/internal/domain/sheets"
	"github.com/yungbote/sheetshare-backend/internal/domain/user"
)

type Principal = auth.Principal
type Role = auth.Role

const (
	RoleAdministrator = auth.RoleAdministrator
	RoleAgent         = auth.RoleAgent
)

type Sheet = sheets.Sheet
type SheetSummary = sheets.SheetSummary
type Field = sheets.Field
type FieldType = sheets.FieldType
type DisplayFormat = sheets.DisplayFormat
type Cell = sheets.Cell
type ShareGrant = sheets.ShareGrant
type APIKey = sheets.APIKey
type ViewPreference = sheets.ViewPreference
type ViewType = sheets.ViewType

const (
	FieldTypeStatic  = sheets.FieldTypeStatic
	FieldTypeDynamic = sheets.FieldTypeDynamic
)

const (
	ViewCard  = sheets.ViewCard
	ViewTable = sheets.ViewTable
)

type Agent = user.Agent

// Models lists every table the service owns, in migration order.
func Models() []any {
	return []any{
		&user.Agent{},
		&sheets.Sheet{},
		&sheets.Field{},
		&sheets.Cell{},
		&sheets.ShareGrant{},
		&sheets.APIKey{},
		&sheets.ViewPreference{},
	}
}
