package lifecycle

import (
	"context"
	"time"
)

// ImportResult summarises a finished import run.
type ImportResult struct {
	// Table that was rebuilt.
	Table string

	// Rows is the number of inserted rows.
	Rows int

	// Duration of the run.
	Duration time.Duration
}

// Importer rebuilds table contents from headerless CSV files.
// It is an offline operation and must not run concurrently with
// serving or with another import.
type Importer interface {
	// ImportDetainees replaces all detainees with records from the file.
	// Every record has 7 fields: name, isn, nationality, iso,
	// arrival_date, transfer_reason, capture_details.
	ImportDetainees(ctx context.Context, path string) (*ImportResult, error)

	// ImportCountries replaces all countries with records from the file.
	// Every record has 2 fields: name, iso.
	ImportCountries(ctx context.Context, path string) (*ImportResult, error)
}
