// Package ioimport implements lifecycle.Importer for headerless CSV
// sources. This is an impure I/O package that reads files and writes
// rows through gorm.
package ioimport

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gitmo/internal/iodb"
	"github.com/gnames/gitmo/pkg/config"
	"github.com/gnames/gitmo/pkg/db"
	"github.com/gnames/gitmo/pkg/decode"
	"github.com/gnames/gitmo/pkg/errcode"
	"github.com/gnames/gitmo/pkg/lifecycle"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnuuid"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// importer implements the lifecycle.Importer interface.
type importer struct {
	cfg      *config.Config
	operator db.Operator
	dec      *decode.Decoder
}

// New creates an Importer. It fails if the configured charset or
// decode mode is unknown.
func New(cfg *config.Config, op db.Operator) (lifecycle.Importer, error) {
	mode, err := decode.ParseMode(cfg.Import.OnDecodeError)
	if err != nil {
		return nil, EncodingError(
			cfg.Import.Encoding, cfg.Import.OnDecodeError, err,
		)
	}

	dec, err := decode.New(cfg.Import.Encoding, mode)
	if err != nil {
		return nil, EncodingError(
			cfg.Import.Encoding, cfg.Import.OnDecodeError, err,
		)
	}

	res := importer{cfg: cfg, operator: op, dec: dec}
	return &res, nil
}

// ImportDetainees replaces the detainees table with the file content.
func (i *importer) ImportDetainees(
	ctx context.Context,
	path string,
) (*lifecycle.ImportResult, error) {
	return i.run(ctx, path, detainees)
}

// ImportCountries replaces the countries table with the file content.
func (i *importer) ImportCountries(
	ctx context.Context,
	path string,
) (*lifecycle.ImportResult, error) {
	return i.run(ctx, path, countries)
}

func (i *importer) run(
	ctx context.Context,
	path string,
	tbl table,
) (*lifecycle.ImportResult, error) {
	gdb := i.operator.DB()
	if gdb == nil {
		return nil, iodb.NotConnectedError()
	}

	startTime := time.Now()
	runID := uuid.New().String()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, OpenFileError(path, err)
	}

	// whole file is parsed before any row is deleted
	records, err := readRecords(bytes.NewReader(data), tbl.fields)
	if err != nil {
		return nil, ReadRecordError(path, tbl.fields, err)
	}

	slog.Info("Starting import",
		"run_id", runID,
		"table", tbl.name,
		"file", path,
		"source_id", gnuuid.New(string(data)).String(),
		"records", humanize.Comma(int64(len(records))),
		"charset", i.dec.Charset(),
		"on_decode_error", i.dec.Mode().String(),
		"atomic", i.cfg.Import.Atomic,
	)

	if err = ctx.Err(); err != nil {
		return nil, CancelledError(err)
	}

	gdb = gdb.WithContext(ctx)
	if i.cfg.Import.Atomic {
		err = gdb.Transaction(func(tx *gorm.DB) error {
			return i.load(ctx, tx, tbl, records)
		})
	} else {
		err = i.load(ctx, gdb, tbl, records)
	}
	err = asCancelled(ctx, err)
	if err != nil {
		slog.Error("Import failed",
			"run_id", runID,
			"table", tbl.name,
			"error", err,
		)
		return nil, err
	}

	duration := time.Since(startTime)
	slog.Info("Import complete",
		"run_id", runID,
		"table", tbl.name,
		"rows", humanize.Comma(int64(len(records))),
		"duration", gnfmt.TimeString(duration.Seconds()),
	)

	res := lifecycle.ImportResult{
		Table:    tbl.name,
		Rows:     len(records),
		Duration: duration,
	}
	return &res, nil
}

// load deletes all rows of the table and inserts records one at a
// time. It stops at the first failing record.
func (i *importer) load(
	ctx context.Context,
	tx *gorm.DB,
	tbl table,
	records [][]string,
) error {
	err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(tbl.model).Error
	if err != nil {
		return TruncateError(tbl.name, err)
	}

	bar := newProgress(i.cfg.Import.Progress, tbl.name, len(records))
	defer bar.finish()

	for n, rec := range records {
		if err = ctx.Err(); err != nil {
			return CancelledError(err)
		}

		row, key := tbl.row(i.dec.Fields(rec))
		if err = tx.Create(row).Error; err != nil {
			if iodb.IsUniqueViolation(err) {
				return DuplicateKeyError(tbl.name, n+1, key, err)
			}
			return InsertError(tbl.name, n+1, err)
		}
		bar.increment()
	}

	return nil
}

// asCancelled turns a failure caused by ctx cancellation into
// CancelledError. Other errors are returned as is.
func asCancelled(ctx context.Context, err error) error {
	if err == nil || errcode.Is(err, errcode.ImportCancelledError) {
		return err
	}
	ctxErr := ctx.Err()
	if ctxErr == nil &&
		(errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded)) {
		ctxErr = err
	}
	if ctxErr == nil {
		return err
	}
	return CancelledError(ctxErr)
}
