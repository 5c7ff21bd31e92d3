package market

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/stretchr/testify/require"

	"singular/core"
	"singular/pkg/number"
)

func testDB(t *testing.T) *db.DB {
	t.Helper()

	dbs, err := db.Open(db.Config{
		Dialect: "sqlite3",
		Host:    filepath.Join(t.TempDir(), "singular.db"),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(dbs))
	t.Cleanup(func() { _ = dbs.Close() })

	return dbs
}

func TestFindReadsThroughTransaction(t *testing.T) {
	ctx := context.Background()
	dbs := testDB(t)
	store := New(dbs)

	m := &core.Market{
		AssetID:            "asset",
		CollateralAssetID:  "coll",
		Symbol:             "TEST",
		LastAccruedAt:      time.Now(),
		TotalBorrowElastic: number.Decimal("100"),
		TotalBorrowBase:    number.Decimal("100"),
	}
	require.NoError(t, dbs.Tx(func(tx *db.DB) error {
		return store.Create(ctx, tx, m)
	}))

	// two sequential updates inside one transaction: the second read
	// must observe the first, uncommitted write, and updating the row
	// it returns must not trip the version guard
	err := dbs.Tx(func(tx *db.DB) error {
		first, err := store.Find(ctx, tx, "asset")
		require.NoError(t, err)

		first.TotalBorrowElastic = number.Decimal("150")
		first.TotalBorrowBase = number.Decimal("150")
		require.NoError(t, store.Update(ctx, tx, first))

		second, err := store.Find(ctx, tx, "asset")
		require.NoError(t, err)
		require.True(t, second.TotalBorrowElastic.Equal(number.Decimal("150")))
		require.Equal(t, first.Version, second.Version)

		second.TotalBorrowElastic = number.Decimal("160")
		second.TotalBorrowBase = number.Decimal("160")
		return store.Update(ctx, tx, second)
	})
	require.NoError(t, err)

	committed, err := store.Find(ctx, nil, "asset")
	require.NoError(t, err)
	require.True(t, committed.TotalBorrowElastic.Equal(number.Decimal("160")))
}

func TestUpdateVersionGuard(t *testing.T) {
	ctx := context.Background()
	dbs := testDB(t)
	store := New(dbs)

	m := &core.Market{
		AssetID:           "asset",
		CollateralAssetID: "coll",
		Symbol:            "TEST",
		LastAccruedAt:     time.Now(),
		TotalAssetElastic: number.Decimal("1000"),
	}
	require.NoError(t, dbs.Tx(func(tx *db.DB) error {
		return store.Create(ctx, tx, m)
	}))

	stale, err := store.Find(ctx, nil, "asset")
	require.NoError(t, err)

	fresh, err := store.Find(ctx, nil, "asset")
	require.NoError(t, err)
	fresh.TotalAssetElastic = number.Decimal("1001")
	require.NoError(t, dbs.Tx(func(tx *db.DB) error {
		return store.Update(ctx, tx, fresh)
	}))

	stale.TotalAssetElastic = number.Decimal("2000")
	err = dbs.Tx(func(tx *db.DB) error {
		return store.Update(ctx, tx, stale)
	})
	require.Equal(t, db.ErrOptimisticLock, err)
}
