package migrate

import (
	"fmt"

	"github.com/givehub/givehub-backend/pkg/db/models"
	"gorm.io/gorm"
)

// partialIndexes are the constraints GORM tags cannot express. The syntax is
// shared by Postgres and SQLite.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_boutique_orders_item_approved ON boutique_orders (item_id) WHERE status = 'approved'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_boutique_orders_pending_requester ON boutique_orders (item_id, requester_id) WHERE status = 'pending_approval'`,
}

// AutoMigrateModels builds the schema from the GORM models. It backs SQLite
// mode and the test suites; Postgres deployments use the goose migrations.
func AutoMigrateModels(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range partialIndexes {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create partial index: %w", err)
		}
	}
	return nil
}
