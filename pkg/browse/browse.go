// Package browse defines read-only queries over the detainees dataset.
// Results are plain records from pkg/schema.
package browse

import (
	"context"

	"github.com/gnames/gitmo/pkg/schema"
)

// LongestHeldLimit is the maximum number of records returned by
// LongestHeld.
const LongestHeldLimit = 50

// Stats summarizes the detainees table.
type Stats struct {
	// LatestArrival is the lexically greatest arrival date over all
	// detainees, including records with an empty date. It is empty
	// when there are no detainees.
	LatestArrival string `json:"latest_arrival" yaml:"latest_arrival"`

	// Total is the number of detainee records.
	Total int64 `json:"total" yaml:"total"`
}

// Browser answers read-only queries. Lookups of a missing key return
// an error with errcode.QueryNotFoundError.
type Browser interface {
	// Countries returns every country in storage order.
	Countries(ctx context.Context) ([]schema.Country, error)

	// Country returns the country with the given code.
	Country(ctx context.Context, iso string) (*schema.Country, error)

	// CountryDetainees returns detainees with the given country code.
	CountryDetainees(ctx context.Context, iso string) ([]schema.Detainee, error)

	// Detainee returns the detainee with the given ISN.
	Detainee(ctx context.Context, isn string) (*schema.Detainee, error)

	// LongestHeld returns up to LongestHeldLimit detainees with a
	// non-empty arrival date, sorted by the date as text, ascending.
	LongestHeld(ctx context.Context) ([]schema.Detainee, error)

	// Stats returns the latest arrival date and the total count.
	Stats(ctx context.Context) (*Stats, error)
}
