package ioimport_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gnames/gitmo/internal/iobrowse"
	"github.com/gnames/gitmo/internal/iodb"
	"github.com/gnames/gitmo/internal/ioimport"
	"github.com/gnames/gitmo/internal/iotesting"
	"github.com/gnames/gitmo/pkg/config"
	"github.com/gnames/gitmo/pkg/db"
	"github.com/gnames/gitmo/pkg/errcode"
	"github.com/gnames/gitmo/pkg/schema"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const aliRow = `Ali,000001,Saudi,SA,2002-01-11,Combatant,Captured in Afghanistan` + "\n"

func setup(t *testing.T, opts ...config.Option) (*config.Config, db.Operator) {
	t.Helper()
	cfg := iotesting.MemoryConfig(opts...)

	op := iodb.NewOperator()
	require.NoError(t, op.Connect(context.Background(), &cfg.Database))
	t.Cleanup(func() { op.Close() })
	require.NoError(t, schema.Migrate(op.DB()))
	return cfg, op
}

func writeCSV(t *testing.T, content string) string {
	return iotesting.WriteCSV(t, "source.csv", content)
}

func isns(t *testing.T, op db.Operator) []string {
	t.Helper()
	var res []string
	err := op.DB().Model(&schema.Detainee{}).Order("isn").Pluck("isn", &res).Error
	require.NoError(t, err)
	return res
}

func fiveRowsDuplicateAtThree() string {
	return strings.Join([]string{
		"A,000001,Saudi,SA,2002-01-11,,",
		"B,000002,Yemeni,YE,2002-02-09,,",
		"C,000001,Saudi,SA,2002-03-01,,",
		"D,000004,Afghan,AF,2002-04-01,,",
		"E,000005,Afghan,AF,2002-05-01,,",
	}, "\n") + "\n"
}

func TestNew(t *testing.T) {
	cfg, op := setup(t)
	imp, err := ioimport.New(cfg, op)
	require.NoError(t, err)
	assert.NotNil(t, imp)
}

func TestNew_BadEncoding(t *testing.T) {
	cfg, op := setup(t, config.OptImportEncoding("klingon"))
	_, err := ioimport.New(cfg, op)
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.ImportEncodingError, gnErr.Code)
}

// TestImportDetainees_SingleRow follows a one record import through
// the query layer.
func TestImportDetainees_SingleRow(t *testing.T) {
	ctx := context.Background()
	cfg, op := setup(t)
	imp, err := ioimport.New(cfg, op)
	require.NoError(t, err)

	res, err := imp.ImportDetainees(ctx, writeCSV(t, aliRow))
	require.NoError(t, err)
	assert.Equal(t, "detainees", res.Table)
	assert.Equal(t, 1, res.Rows)

	b := iobrowse.New(op)
	d, err := b.Detainee(ctx, "000001")
	require.NoError(t, err)
	assert.Equal(t, "Ali", d.Name)
	assert.Equal(t, "Saudi", d.Nationality)
	assert.Equal(t, "SA", d.ISO)
	assert.Equal(t, "Captured in Afghanistan", d.CaptureDetails)

	st, err := b.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2002-01-11", st.LatestArrival)
	assert.Equal(t, int64(1), st.Total)

	longest, err := b.LongestHeld(ctx)
	require.NoError(t, err)
	require.Len(t, longest, 1)
	assert.Equal(t, "000001", longest[0].ISN)
}

func TestImportDetainees_EmptyArrival(t *testing.T) {
	ctx := context.Background()
	cfg, op := setup(t)
	imp, err := ioimport.New(cfg, op)
	require.NoError(t, err)

	src := aliRow + "Omar,000002,Yemeni,YE,,,\n"
	_, err = imp.ImportDetainees(ctx, writeCSV(t, src))
	require.NoError(t, err)

	b := iobrowse.New(op)
	longest, err := b.LongestHeld(ctx)
	require.NoError(t, err)
	require.Len(t, longest, 1)
	assert.Equal(t, "000001", longest[0].ISN)

	st, err := b.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Total)
}

// TestImportDetainees_DuplicateNotAtomic keeps records inserted before
// the duplicate and never reaches the records after it.
func TestImportDetainees_DuplicateNotAtomic(t *testing.T) {
	ctx := context.Background()
	cfg, op := setup(t, config.OptImportAtomic(false))
	imp, err := ioimport.New(cfg, op)
	require.NoError(t, err)

	res, err := imp.ImportDetainees(ctx, writeCSV(t, fiveRowsDuplicateAtThree()))
	assert.Nil(t, res)
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.ImportDuplicateKeyError, gnErr.Code)
	assert.Equal(t, []any{3, "000001", "detainees"}, gnErr.Vars)
	assert.True(t, iodb.IsUniqueViolation(gnErr.Err))

	assert.Equal(t, []string{"000001", "000002"}, isns(t, op))
}

// TestImportDetainees_DuplicateAtomic leaves the previous content when
// a record fails.
func TestImportDetainees_DuplicateAtomic(t *testing.T) {
	ctx := context.Background()
	cfg, op := setup(t)
	require.True(t, cfg.Import.Atomic)
	imp, err := ioimport.New(cfg, op)
	require.NoError(t, err)

	_, err = imp.ImportDetainees(ctx, writeCSV(t, aliRow))
	require.NoError(t, err)

	_, err = imp.ImportDetainees(ctx, writeCSV(t, fiveRowsDuplicateAtThree()))
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.ImportDuplicateKeyError))

	assert.Equal(t, []string{"000001"}, isns(t, op))
	var d schema.Detainee
	require.NoError(t, op.DB().Take(&d, "isn = ?", "000001").Error)
	assert.Equal(t, "Ali", d.Name)
}

func TestImportDetainees_Idempotent(t *testing.T) {
	ctx := context.Background()
	for _, atomic := range []bool{true, false} {
		cfg, op := setup(t, config.OptImportAtomic(atomic))
		imp, err := ioimport.New(cfg, op)
		require.NoError(t, err)

		src := writeCSV(t, aliRow+"Omar,000002,Yemeni,YE,,,\n")

		_, err = imp.ImportDetainees(ctx, src)
		require.NoError(t, err)
		var first []schema.Detainee
		require.NoError(t, op.DB().Order("isn").Find(&first).Error)

		_, err = imp.ImportDetainees(ctx, src)
		require.NoError(t, err)
		var second []schema.Detainee
		require.NoError(t, op.DB().Order("isn").Find(&second).Error)

		assert.Len(t, second, 2)
		assert.Equal(t, first, second)
	}
}

// TestImportDetainees_Replaces drops rows missing from the new source.
func TestImportDetainees_Replaces(t *testing.T) {
	ctx := context.Background()
	cfg, op := setup(t)
	imp, err := ioimport.New(cfg, op)
	require.NoError(t, err)

	_, err = imp.ImportDetainees(ctx, writeCSV(t, aliRow))
	require.NoError(t, err)
	_, err = imp.ImportDetainees(ctx, writeCSV(t, "Omar,000002,Yemeni,YE,,,\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"000002"}, isns(t, op))
}

// TestImportDetainees_HeaderRow shows a header loads as a data row.
func TestImportDetainees_HeaderRow(t *testing.T) {
	ctx := context.Background()
	cfg, op := setup(t)
	imp, err := ioimport.New(cfg, op)
	require.NoError(t, err)

	header := "name,isn,nationality,iso,arrival_date,transfer_reason,capture_details\n"
	res, err := imp.ImportDetainees(ctx, writeCSV(t, header+aliRow))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.Contains(t, isns(t, op), "isn")
}

func TestImportDetainees_BadFieldCount(t *testing.T) {
	ctx := context.Background()
	cfg, op := setup(t)
	imp, err := ioimport.New(cfg, op)
	require.NoError(t, err)

	_, err = imp.ImportDetainees(ctx, writeCSV(t, aliRow))
	require.NoError(t, err)

	_, err = imp.ImportDetainees(ctx, writeCSV(t, aliRow+"Omar,000002,Yemeni\n"))
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.ImportReadRecordError))

	// parsing fails before anything is deleted
	assert.Equal(t, []string{"000001"}, isns(t, op))
}

func TestImportDetainees_MissingFile(t *testing.T) {
	cfg, op := setup(t)
	imp, err := ioimport.New(cfg, op)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nope.csv")
	_, err = imp.ImportDetainees(context.Background(), path)
	assert.True(t, errcode.Is(err, errcode.ImportOpenFileError))
}

func TestImportDetainees_QuotedFields(t *testing.T) {
	ctx := context.Background()
	cfg, op := setup(t)
	imp, err := ioimport.New(cfg, op)
	require.NoError(t, err)

	src := `"Al-Qahtani, Mohammed",000063,Saudi,SA,2002-02-13,,"Captured at ""Tora Bora"""` + "\n"
	_, err = imp.ImportDetainees(ctx, writeCSV(t, src))
	require.NoError(t, err)

	var d schema.Detainee
	require.NoError(t, op.DB().Take(&d, "isn = ?", "000063").Error)
	assert.Equal(t, "Al-Qahtani, Mohammed", d.Name)
	assert.Equal(t, `Captured at "Tora Bora"`, d.CaptureDetails)
}

func TestImportDetainees_InvalidBytes(t *testing.T) {
	tests := []struct {
		msg  string
		mode string
		name string
	}{
		{"ignore drops bytes", "ignore", "Ali"},
		{"replace keeps text valid", "replace", ""},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			ctx := context.Background()
			cfg, op := setup(t, config.OptImportOnDecodeError(v.mode))
			imp, err := ioimport.New(cfg, op)
			require.NoError(t, err)

			src := "Al\xffi,000001,Saudi,SA,2002-01-11,,\n"
			_, err = imp.ImportDetainees(ctx, writeCSV(t, src))
			require.NoError(t, err)

			var d schema.Detainee
			require.NoError(t, op.DB().Take(&d, "isn = ?", "000001").Error)
			assert.True(t, utf8.ValidString(d.Name))
			if v.name != "" {
				assert.Equal(t, v.name, d.Name)
			}
		})
	}
}

func TestImportDetainees_Windows1252(t *testing.T) {
	ctx := context.Background()
	cfg, op := setup(t, config.OptImportEncoding("windows-1252"))
	imp, err := ioimport.New(cfg, op)
	require.NoError(t, err)

	src := "Jos\xe9,000009,Spanish,ES,2002-01-11,,\n"
	_, err = imp.ImportDetainees(ctx, writeCSV(t, src))
	require.NoError(t, err)

	var d schema.Detainee
	require.NoError(t, op.DB().Take(&d, "isn = ?", "000009").Error)
	assert.Equal(t, "José", d.Name)
}

func TestImportDetainees_Cancelled(t *testing.T) {
	tests := []struct {
		msg    string
		atomic bool
	}{
		{"atomic", true},
		{"not atomic", false},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			cfg, op := setup(t, config.OptImportAtomic(v.atomic))
			imp, err := ioimport.New(cfg, op)
			require.NoError(t, err)

			_, err = imp.ImportDetainees(context.Background(), writeCSV(t, aliRow))
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err = imp.ImportDetainees(ctx, writeCSV(t, fiveRowsDuplicateAtThree()))
			require.Error(t, err)
			assert.True(t, errcode.Is(err, errcode.ImportCancelledError))

			gnErr, ok := err.(*gn.Error)
			require.True(t, ok)
			assert.ErrorIs(t, gnErr.Err, context.Canceled)

			// nothing was deleted
			assert.Equal(t, []string{"000001"}, isns(t, op))
		})
	}
}

// TestImportDetainees_CancelledMidRun cancels after two inserted rows
// and expects the transaction to restore the previous content.
func TestImportDetainees_CancelledMidRun(t *testing.T) {
	cfg, op := setup(t)
	imp, err := ioimport.New(cfg, op)
	require.NoError(t, err)

	_, err = imp.ImportDetainees(context.Background(), writeCSV(t, aliRow))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var inserted int
	err = op.DB().Callback().Create().After("gorm:create").
		Register("gitmo:cancel_after_two", func(tx *gorm.DB) {
			inserted++
			if inserted == 2 {
				cancel()
			}
		})
	require.NoError(t, err)

	src := strings.Join([]string{
		"A,000011,Saudi,SA,2002-01-11,,",
		"B,000012,Yemeni,YE,2002-02-09,,",
		"C,000013,Saudi,SA,2002-03-01,,",
		"D,000014,Afghan,AF,2002-04-01,,",
	}, "\n") + "\n"
	_, err = imp.ImportDetainees(ctx, writeCSV(t, src))
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.ImportCancelledError))
	assert.Equal(t, 2, inserted)

	assert.Equal(t, []string{"000001"}, isns(t, op))
}

func TestImportCountries(t *testing.T) {
	ctx := context.Background()
	cfg, op := setup(t)
	imp, err := ioimport.New(cfg, op)
	require.NoError(t, err)

	src := "Afghanistan,AF\nSaudi Arabia,SA\nYemen,YE\n"
	res, err := imp.ImportCountries(ctx, writeCSV(t, src))
	require.NoError(t, err)
	assert.Equal(t, "countries", res.Table)
	assert.Equal(t, 3, res.Rows)

	c, err := iobrowse.New(op).Country(ctx, "SA")
	require.NoError(t, err)
	assert.Equal(t, "Saudi Arabia", c.Name)

	_, err = imp.ImportCountries(ctx, writeCSV(t, "Afghanistan,AF\nAfghan,AF\n"))
	assert.True(t, errcode.Is(err, errcode.ImportDuplicateKeyError))
}

func TestNotConnected(t *testing.T) {
	cfg := config.New()
	imp, err := ioimport.New(cfg, iodb.NewOperator())
	require.NoError(t, err)

	_, err = imp.ImportCountries(context.Background(), "countries.csv")
	assert.True(t, errcode.Is(err, errcode.DBNotConnectedError))
}
