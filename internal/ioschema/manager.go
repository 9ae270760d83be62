// Package ioschema implements SchemaManager interface for
// database schema management. This is an impure I/O package
// that wraps GORM AutoMigrate functionality.
package ioschema

import (
	"context"
	"fmt"

	"github.com/gnames/gitmo/internal/iodb"
	"github.com/gnames/gitmo/pkg/config"
	"github.com/gnames/gitmo/pkg/db"
	"github.com/gnames/gitmo/pkg/lifecycle"
	"github.com/gnames/gitmo/pkg/schema"
)

// manager implements the lifecycle.SchemaManager interface
// using GORM AutoMigrate.
type manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) lifecycle.SchemaManager {
	return &manager{operator: op}
}

// Create creates the database schema using GORM AutoMigrate.
// On PostgreSQL also applies "C" collation so that text
// ordering is byte-lexical as it is in SQLite.
func (m *manager) Create(
	ctx context.Context,
	cfg *config.Config,
) error {
	gdb := m.operator.DB()
	if gdb == nil {
		return iodb.NotConnectedError()
	}

	if err := schema.Migrate(gdb.WithContext(ctx)); err != nil {
		return CreateSchemaError(err)
	}

	if m.operator.Driver() == "postgres" {
		if err := m.setCollation(ctx); err != nil {
			return err
		}
	}

	return nil
}

// setCollation sets "C" collation on columns used for sorting.
func (m *manager) setCollation(ctx context.Context) error {
	type columnDef struct {
		table, column string
	}

	columns := []columnDef{
		{"detainees", "arrival_date"},
	}

	qStr := `ALTER TABLE %s ALTER COLUMN %s TYPE TEXT COLLATE "C"`

	gdb := m.operator.DB().WithContext(ctx)
	for _, col := range columns {
		q := fmt.Sprintf(qStr, col.table, col.column)
		if err := gdb.Exec(q).Error; err != nil {
			return CollationError(col.table, col.column, err)
		}
	}

	return nil
}
