package db

import (
	"context"

	"github.com/gnames/gitmo/pkg/config"
	"gorm.io/gorm"
)

// Operator defines the interface for basic database management operations.
// It owns the storage handle for the lifetime of a command: opened once at
// start, closed at shutdown. Components receive the Operator explicitly
// and use DB() for their own queries.
type Operator interface {
	// Connect opens the storage described by the config.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close releases the storage handle.
	Close() error

	// DB returns the gorm handle, nil before Connect.
	DB() *gorm.DB

	// Driver returns the name of the connected driver
	// ("sqlite" or "postgres").
	Driver() string

	// HasTables checks if both gitmo tables exist.
	HasTables(ctx context.Context) (bool, error)

	// DropAllTables drops gitmo tables.
	// Used during schema creation when overwriting existing data.
	DropAllTables(ctx context.Context) error
}
