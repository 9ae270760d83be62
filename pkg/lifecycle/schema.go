// Package lifecycle defines contracts for the offline maintenance
// operations of gitmo: schema creation and data import.
package lifecycle

import (
	"context"

	"github.com/gnames/gitmo/pkg/config"
)

// SchemaManager defines the interface for database schema management.
// Schema creation is idempotent - safe to run multiple times.
type SchemaManager interface {
	// Create creates countries and detainees tables using GORM
	// AutoMigrate and applies byte-order collation where the
	// database needs it.
	Create(ctx context.Context, cfg *config.Config) error
}
