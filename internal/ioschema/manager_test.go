package ioschema

import (
	"context"
	"errors"
	"testing"

	"github.com/gnames/gitmo/internal/iodb"
	"github.com/gnames/gitmo/internal/iotesting"
	"github.com/gnames/gitmo/pkg/config"
	"github.com/gnames/gitmo/pkg/errcode"
	"github.com/gnames/gitmo/pkg/lifecycle"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestManager_ImplementsInterface verifies manager
// implements lifecycle.SchemaManager interface.
func TestManager_ImplementsInterface(t *testing.T) {
	op := iodb.NewOperator()
	var _ lifecycle.SchemaManager = NewManager(op)
}

// TestCreate_NotConnected verifies schema creation needs a
// connected operator.
func TestCreate_NotConnected(t *testing.T) {
	mgr := NewManager(iodb.NewOperator())
	err := mgr.Create(context.Background(), config.New())
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.DBNotConnectedError))
}

// TestCreate_SQLite verifies tables are created and the
// operation is idempotent.
func TestCreate_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := iotesting.MemoryConfig()

	op := iodb.NewOperator()
	require.NoError(t, op.Connect(ctx, &cfg.Database))
	defer op.Close()

	mgr := NewManager(op)
	require.NoError(t, mgr.Create(ctx, cfg))

	has, err := op.HasTables(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, mgr.Create(ctx, cfg))
}

// TestCreate_Postgres verifies "C" collation gives byte order to
// arrival dates.
func TestCreate_Postgres(t *testing.T) {
	ctx := context.Background()
	cfg := iotesting.PostgresConfig(t)

	op := iodb.NewOperator()
	require.NoError(t, op.Connect(ctx, &cfg.Database))
	defer op.Close()
	require.NoError(t, op.DropAllTables(ctx))
	defer op.DropAllTables(ctx)

	require.NoError(t, NewManager(op).Create(ctx, cfg))

	var collation string
	err := op.DB().Raw(`SELECT collation_name FROM information_schema.columns
		WHERE table_name = 'detainees' AND column_name = 'arrival_date'`).
		Scan(&collation).Error
	require.NoError(t, err)
	assert.Equal(t, "C", collation)
}

func TestErrors_Structure(t *testing.T) {
	originalErr := errors.New("read-only database")

	err := CreateSchemaError(originalErr)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.SchemaCreateError, gnErr.Code)
	assert.ErrorIs(t, gnErr.Err, originalErr)

	err = CollationError("detainees", "arrival_date", originalErr)
	gnErr, ok = err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.SchemaCollationError, gnErr.Code)
	assert.Equal(t, []any{"detainees", "arrival_date"}, gnErr.Vars)
	assert.ErrorIs(t, gnErr.Err, originalErr)
}
