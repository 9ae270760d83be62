package ioimport

import (
	"fmt"

	"github.com/gnames/gitmo/pkg/errcode"
	"github.com/gnames/gn"
)

// EncodingError creates an error for an unknown source charset or
// decode mode.
func EncodingError(charset, mode string, err error) error {
	msg := `Cannot decode sources as <em>%s</em> with mode <em>%s</em>

<em>How to fix:</em>
  Use a WHATWG charset label, for example utf-8, windows-1252, iso-8859-1,
  and on_decode_error "ignore" or "replace"`
	vars := []any{charset, mode}

	return &gn.Error{
		Code: errcode.ImportEncodingError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("bad decoder settings %s/%s: %w", charset, mode, err),
	}
}

// OpenFileError creates an error for an unreadable CSV file.
func OpenFileError(path string, err error) error {
	msg := "Cannot read file <em>%s</em>"
	vars := []any{path}

	return &gn.Error{
		Code: errcode.ImportOpenFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to read %s: %w", path, err),
	}
}

// ReadRecordError creates an error for malformed CSV content.
// Nothing is deleted when parsing fails.
func ReadRecordError(path string, fields int, err error) error {
	msg := `Cannot parse <em>%s</em>, every record must have %d fields`
	vars := []any{path, fields}

	return &gn.Error{
		Code: errcode.ImportReadRecordError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to parse %s: %w", path, err),
	}
}

// TruncateError creates an error for a failed removal of old rows.
func TruncateError(table string, err error) error {
	msg := "Cannot delete old rows of <em>%s</em>"
	vars := []any{table}

	return &gn.Error{
		Code: errcode.ImportTruncateError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to truncate %s: %w", table, err),
	}
}

// InsertError creates an error for a row that could not be inserted.
func InsertError(table string, row int, err error) error {
	msg := "Cannot insert record %d into <em>%s</em>"
	vars := []any{row, table}

	return &gn.Error{
		Code: errcode.ImportInsertError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to insert record %d into %s: %w", row, table, err),
	}
}

// DuplicateKeyError creates an error for a record whose primary key
// is already in the table. The import stops at that record.
func DuplicateKeyError(table string, row int, key string, err error) error {
	msg := `Record %d repeats key <em>%s</em> of <em>%s</em>, import aborted`
	vars := []any{row, key, table}

	return &gn.Error{
		Code: errcode.ImportDuplicateKeyError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("duplicate key %q in %s at record %d: %w",
			key, table, row, err),
	}
}

// CancelledError creates an error for an import interrupted by
// context cancellation.
func CancelledError(err error) error {
	msg := "Import cancelled"

	return &gn.Error{
		Code: errcode.ImportCancelledError,
		Msg:  msg,
		Err:  fmt.Errorf("import cancelled: %w", err),
	}
}
