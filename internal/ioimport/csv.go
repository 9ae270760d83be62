package ioimport

import (
	"encoding/csv"
	"io"

	"github.com/gnames/gitmo/pkg/schema"
)

// table describes how records of a CSV source become rows.
type table struct {
	name string

	// fields is the exact number of fields per record.
	fields int

	// model is an empty row, used to target deletes.
	model any

	// row converts a decoded record into a model and its key.
	row func(rec []string) (any, string)
}

var detainees = table{
	name:   schema.Detainee{}.TableName(),
	fields: 7,
	model:  &schema.Detainee{},
	row: func(rec []string) (any, string) {
		d := &schema.Detainee{
			Name:           rec[0],
			ISN:            rec[1],
			Nationality:    rec[2],
			ISO:            rec[3],
			ArrivalDate:    rec[4],
			TransferReason: rec[5],
			CaptureDetails: rec[6],
		}
		return d, d.ISN
	},
}

var countries = table{
	name:   schema.Country{}.TableName(),
	fields: 2,
	model:  &schema.Country{},
	row: func(rec []string) (any, string) {
		c := &schema.Country{
			Name: rec[0],
			ISO:  rec[1],
		}
		return c, c.ISO
	},
}

// readRecords parses a headerless CSV source. Every record must have
// exactly fields fields, blank lines are skipped. Field bytes are returned
// undecoded.
func readRecords(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields
	cr.LazyQuotes = true
	return cr.ReadAll()
}
