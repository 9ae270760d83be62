package iobrowse

import (
	"fmt"

	"github.com/gnames/gitmo/pkg/errcode"
	"github.com/gnames/gn"
)

// NotFoundError creates an error for a lookup key that is not in
// the table.
func NotFoundError(table, key string, err error) error {
	msg := "No record <em>%s</em> in <em>%s</em>"
	vars := []any{key, table}

	return &gn.Error{
		Code: errcode.QueryNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("%s %q not found: %w", table, key, err),
	}
}

// QueryError creates an error for a failed read query.
func QueryError(query string, err error) error {
	msg := "Query <em>%s</em> failed"
	vars := []any{query}

	return &gn.Error{
		Code: errcode.QueryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("query %s failed: %w", query, err),
	}
}
