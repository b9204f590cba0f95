package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/typecast-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureIndexes(db)
}

// EnsureIndexes adds indexes gorm tags cannot express on both backends.
// idx_result_one_public holds at most one public result per profile, so two
// concurrent shares cannot both commit.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"backfill_result_computed_at", `UPDATE result SET computed_at = created_at WHERE computed_at IS NULL;`},
		{"drop idx_result_profile_public", `DROP INDEX IF EXISTS idx_result_profile_public;`},
		{"idx_result_one_public", `CREATE UNIQUE INDEX IF NOT EXISTS idx_result_one_public ON result(profile_id) WHERE is_public;`},
		{"idx_quiz_question_quiz", `CREATE INDEX IF NOT EXISTS idx_quiz_question_quiz ON quiz_question(quiz_id, display_order);`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("ensure %s: %w", s.name, err)
		}
	}
	return nil
}
