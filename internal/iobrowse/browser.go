// Package iobrowse implements browse.Browser with gorm queries.
// This is an impure I/O package.
package iobrowse

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gnames/gitmo/internal/iodb"
	"github.com/gnames/gitmo/pkg/browse"
	"github.com/gnames/gitmo/pkg/db"
	"github.com/gnames/gitmo/pkg/schema"
	"gorm.io/gorm"
)

type browser struct {
	operator db.Operator
}

// New creates a Browser that reads through the operator's connection.
func New(op db.Operator) browse.Browser {
	return &browser{operator: op}
}

func (b *browser) db(ctx context.Context) (*gorm.DB, error) {
	gdb := b.operator.DB()
	if gdb == nil {
		return nil, iodb.NotConnectedError()
	}
	return gdb.WithContext(ctx), nil
}

// Countries returns all countries. No ordering is requested.
func (b *browser) Countries(ctx context.Context) ([]schema.Country, error) {
	gdb, err := b.db(ctx)
	if err != nil {
		return nil, err
	}

	var res []schema.Country
	if err = gdb.Find(&res).Error; err != nil {
		return nil, QueryError("countries", err)
	}
	return res, nil
}

// Country looks up a country by code.
func (b *browser) Country(
	ctx context.Context,
	iso string,
) (*schema.Country, error) {
	gdb, err := b.db(ctx)
	if err != nil {
		return nil, err
	}

	var res schema.Country
	err = gdb.Where("iso = ?", iso).Take(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError("countries", iso, err)
	}
	if err != nil {
		return nil, QueryError("country", err)
	}
	return &res, nil
}

// CountryDetainees returns detainees of a country in storage order.
func (b *browser) CountryDetainees(
	ctx context.Context,
	iso string,
) ([]schema.Detainee, error) {
	gdb, err := b.db(ctx)
	if err != nil {
		return nil, err
	}

	var res []schema.Detainee
	err = gdb.Where("iso = ?", iso).Find(&res).Error
	if err != nil {
		return nil, QueryError("country detainees", err)
	}
	return res, nil
}

// Detainee looks up a detainee by ISN.
func (b *browser) Detainee(
	ctx context.Context,
	isn string,
) (*schema.Detainee, error) {
	gdb, err := b.db(ctx)
	if err != nil {
		return nil, err
	}

	var res schema.Detainee
	err = gdb.Where("isn = ?", isn).Take(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError("detainees", isn, err)
	}
	if err != nil {
		return nil, QueryError("detainee", err)
	}
	return &res, nil
}

// LongestHeld excludes empty arrival dates. Dates are compared as
// text, so their format decides the order. Equal dates are ordered
// by ISN.
func (b *browser) LongestHeld(ctx context.Context) ([]schema.Detainee, error) {
	gdb, err := b.db(ctx)
	if err != nil {
		return nil, err
	}

	var res []schema.Detainee
	err = gdb.
		Where("arrival_date <> ?", "").
		Order("arrival_date ASC").
		Order("isn ASC").
		Limit(browse.LongestHeldLimit).
		Find(&res).Error
	if err != nil {
		return nil, QueryError("longest held", err)
	}
	return res, nil
}

// Stats takes the maximum over all rows, empty dates included.
func (b *browser) Stats(ctx context.Context) (*browse.Stats, error) {
	gdb, err := b.db(ctx)
	if err != nil {
		return nil, err
	}

	var latest sql.NullString
	err = gdb.Model(&schema.Detainee{}).
		Select("MAX(arrival_date)").
		Row().
		Scan(&latest)
	if err != nil {
		return nil, QueryError("latest arrival", err)
	}

	var total int64
	if err = gdb.Model(&schema.Detainee{}).Count(&total).Error; err != nil {
		return nil, QueryError("detainee count", err)
	}

	return &browse.Stats{LatestArrival: latest.String, Total: total}, nil
}
