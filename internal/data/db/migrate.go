package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/sheetshare-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return EnsureSheetIndexes(db)
}

// EnsureSheetIndexes creates the indexes AutoMigrate cannot express. The cell
// identity index folds a null owner to 0 so that two administrator cells for
// the same (sheet, field, row) collide; the expression form works on both
// Postgres and SQLite.
func EnsureSheetIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{
			name: "idx_cell_identity",
			sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_cell_identity
				ON cell (sheet_id, field_id, row_key, COALESCE(owner_user_id, 0));`,
		},
		{
			name: "idx_cell_sheet_row",
			sql:  `CREATE INDEX IF NOT EXISTS idx_cell_sheet_row ON cell (sheet_id, row_key);`,
		},
		{
			name: "idx_sheet_manager_number",
			sql:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_sheet_manager_number ON sheet (manager_id, sheet_number);`,
		},
		{
			name: "idx_sheet_manager_name",
			sql:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_sheet_manager_name ON sheet (manager_id, sheet_name);`,
		},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}
