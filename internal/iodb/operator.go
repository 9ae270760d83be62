// Package iodb implements database operations using gorm.
// This is an impure I/O package that implements contracts
// defined in pkg/.
package iodb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/gnames/gitmo/pkg/config"
	"github.com/gnames/gitmo/pkg/db"
	"github.com/gnames/gitmo/pkg/schema"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // pure Go SQLite driver, registers "sqlite"
)

// gormOperator implements db.Operator interface on top of
// gorm with either SQLite or PostgreSQL dialect.
type gormOperator struct {
	driver string
	gdb    *gorm.DB
	sqlDB  *sql.DB
	pool   *pgxpool.Pool
}

// NewOperator creates a new database operator
// (without connecting).
func NewOperator() db.Operator {
	return &gormOperator{}
}

// Connect opens the storage described by cfg.
func (g *gormOperator) Connect(
	ctx context.Context,
	cfg *config.DatabaseConfig,
) error {
	var err error
	switch cfg.Driver {
	case "sqlite":
		err = g.connectSQLite(ctx, cfg)
	case "postgres":
		err = g.connectPostgres(ctx, cfg)
	default:
		return UnsupportedDriverError(cfg.Driver)
	}
	if err != nil {
		return err
	}

	g.driver = cfg.Driver
	slog.Info("Connected to database", "driver", g.driver,
		"target", Target(cfg))
	return nil
}

func (g *gormOperator) connectSQLite(
	ctx context.Context,
	cfg *config.DatabaseConfig,
) error {
	sqlDB, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return ConnectionError(cfg, err)
	}

	// SQLite has a single writer, and every connection to ":memory:"
	// is a separate database.
	sqlDB.SetMaxOpenConns(1)

	if err = sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return ConnectionError(cfg, err)
	}

	gdb, err := gorm.Open(
		sqlite.New(sqlite.Config{Conn: sqlDB}),
		gormConfig(),
	)
	if err != nil {
		sqlDB.Close()
		return ConnectionError(cfg, err)
	}

	g.sqlDB = sqlDB
	g.gdb = gdb
	return nil
}

func (g *gormOperator) connectPostgres(
	ctx context.Context,
	cfg *config.DatabaseConfig,
) error {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return ConnectionError(cfg, err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return ConnectionError(cfg, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return ConnectionError(cfg, err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	gdb, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		gormConfig(),
	)
	if err != nil {
		sqlDB.Close()
		pool.Close()
		return ConnectionError(cfg, err)
	}

	g.pool = pool
	g.sqlDB = sqlDB
	g.gdb = gdb
	return nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
}

// Close releases all database connections.
func (g *gormOperator) Close() error {
	var err error
	if g.sqlDB != nil {
		err = g.sqlDB.Close()
	}
	if g.pool != nil {
		g.pool.Close()
	}
	g.gdb, g.sqlDB, g.pool = nil, nil, nil
	return err
}

// DB returns the gorm handle.
func (g *gormOperator) DB() *gorm.DB {
	return g.gdb
}

// Driver returns the name of the connected driver.
func (g *gormOperator) Driver() string {
	return g.driver
}

// HasTables checks if both gitmo tables exist.
func (g *gormOperator) HasTables(ctx context.Context) (bool, error) {
	if g.gdb == nil {
		return false, NotConnectedError()
	}

	m := g.gdb.WithContext(ctx).Migrator()
	for _, table := range schema.TableNames() {
		if !m.HasTable(table) {
			return false, nil
		}
	}
	return true, nil
}

// DropAllTables drops gitmo tables if they exist.
func (g *gormOperator) DropAllTables(ctx context.Context) error {
	if g.gdb == nil {
		return NotConnectedError()
	}

	m := g.gdb.WithContext(ctx).Migrator()
	for _, table := range schema.TableNames() {
		if err := m.DropTable(table); err != nil {
			return DropTableError(table, err)
		}
	}
	return nil
}

// Target describes the connected database for messages and logs.
func Target(cfg *config.DatabaseConfig) string {
	if cfg.Driver == "sqlite" {
		return cfg.Path
	}
	return fmt.Sprintf("%s@%s:%d/%s",
		cfg.User, cfg.Host, cfg.Port, cfg.Database)
}
