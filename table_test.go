package qforms_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/njchilds90/qforms"
)

func TestTable_RangeMatchesClassNumber(t *testing.T) {
	defer goleak.VerifyNone(t)

	for _, mode := range []qforms.CountMode{qforms.CountParity, qforms.CountProper} {
		table, err := qforms.NewTable(qforms.WithMode(mode), qforms.WithWorkers(4))
		require.NoError(t, err)

		entries, err := table.Range(context.Background(), 1, 170)
		require.NoError(t, err)
		require.Len(t, entries, 169)
		for i, e := range entries {
			assert.Equal(t, int64(i+1), e.D)
			h, err := qforms.ClassNumber(e.D, qforms.WithMode(mode))
			require.NoError(t, err)
			assert.Equal(t, h, e.H, "%s D=%d", mode, e.D)
		}
	}
}

func TestTable_WithClassNumber(t *testing.T) {
	defer goleak.VerifyNone(t)

	table, err := qforms.NewTable(qforms.WithCacheSize(16))
	require.NoError(t, err)
	ds, err := table.WithClassNumber(context.Background(), 1, 170, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 7, 8, 11, 19, 43, 67, 163}, ds)

	// Served again after cache eviction.
	again, err := table.WithClassNumber(context.Background(), 1, 170, 1)
	require.NoError(t, err)
	assert.Equal(t, ds, again)

	none, err := table.WithClassNumber(context.Background(), 1, 3, 1)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTable_Cancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	table, err := qforms.NewTable()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = table.Range(ctx, 1, 10000)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTable_InvalidRange(t *testing.T) {
	table, err := qforms.NewTable()
	require.NoError(t, err)
	for _, r := range [][2]int64{{0, 10}, {5, 5}, {10, 2}} {
		_, err := table.Range(context.Background(), r[0], r[1])
		assert.ErrorIs(t, err, qforms.ErrInvalidArgument, "range %v", r)
	}
}

func TestNewTable_InvalidOptions(t *testing.T) {
	_, err := qforms.NewTable(qforms.WithCacheSize(0))
	assert.ErrorIs(t, err, qforms.ErrInvalidArgument)
	_, err = qforms.NewTable(qforms.WithWorkers(0))
	assert.ErrorIs(t, err, qforms.ErrInvalidArgument)
}

func TestTable_ClassNumberCached(t *testing.T) {
	table, err := qforms.NewTable(qforms.WithMode(qforms.CountProper))
	require.NoError(t, err)
	assert.Equal(t, qforms.CountProper, table.Mode())
	for i := 0; i < 2; i++ {
		h, err := table.ClassNumber(47)
		require.NoError(t, err)
		assert.Equal(t, 5, h)
	}
	_, err = table.ClassNumber(0)
	assert.ErrorIs(t, err, qforms.ErrInvalidArgument)
}
