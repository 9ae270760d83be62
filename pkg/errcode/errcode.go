// Package errcode enumerates error codes used by gitmo's gn.Error values.
package errcode

import (
	"errors"

	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBUnsupportedDriverError
	DBNotConnectedError
	DBTableCheckError
	DBEmptyDatabaseError
	DBDropTableError

	// Schema errors
	SchemaCreateError
	SchemaCollationError

	// Import errors
	ImportEncodingError
	ImportOpenFileError
	ImportReadRecordError
	ImportTruncateError
	ImportInsertError
	ImportDuplicateKeyError
	ImportCancelledError

	// Query errors
	QueryNotFoundError
	QueryError

	// Server errors
	ServerError
)

// Is reports whether err, or any error it wraps, is a *gn.Error
// with the given code.
func Is(err error, code gn.ErrorCode) bool {
	var gnErr *gn.Error
	if !errors.As(err, &gnErr) {
		return false
	}
	return gnErr.Code == code
}
