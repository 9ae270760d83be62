package iodb

import (
	"fmt"

	"github.com/gnames/gitmo/pkg/config"
	"github.com/gnames/gitmo/pkg/errcode"
	"github.com/gnames/gn"
)

// ConnectionError creates an error for failed database connection.
func ConnectionError(cfg *config.DatabaseConfig, err error) error {
	msg := `Cannot connect to <em>%s</em> database <em>%s</em>

<em>How to fix:</em>
  1. Check database settings in your config file
  2. For sqlite make sure the directory of the file exists
  3. For postgres make sure the server is running`

	vars := []any{cfg.Driver, Target(cfg)}

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to connect to %s %s: %w",
			cfg.Driver, Target(cfg), err),
	}
}

// UnsupportedDriverError creates an error for unknown driver name.
func UnsupportedDriverError(driver string) error {
	msg := "Database driver <em>%s</em> is not supported"
	vars := []any{driver}

	return &gn.Error{
		Code: errcode.DBUnsupportedDriverError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unsupported database driver %q", driver),
	}
}

// NotConnectedError creates an error for operations attempted
// before Connect.
func NotConnectedError() error {
	msg := "Database operation attempted without connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// EmptyDatabaseError creates an error for a database without
// gitmo tables.
func EmptyDatabaseError(target string) error {
	msg := `Database <em>%s</em> has no gitmo tables.
   Run <em>'gitmo create'</em> first to initialize the schema.`
	vars := []any{target}

	return &gn.Error{
		Code: errcode.DBEmptyDatabaseError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("database %s has no tables", target),
	}
}

// DropTableError creates an error for failed table removal.
func DropTableError(table string, err error) error {
	msg := "Cannot drop table <em>%s</em>"
	vars := []any{table}

	return &gn.Error{
		Code: errcode.DBDropTableError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to drop table %s: %w", table, err),
	}
}
