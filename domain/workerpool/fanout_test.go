package workerpool_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voinetwork/swaprouter/domain/workerpool"
)

func TestRun_ReturnsOneResultPerItemInOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	results := workerpool.Run(context.Background(), 2, items, func(ctx context.Context, item int) (int, error) {
		return item * 10, nil
	})

	require.Len(t, results, len(items))
	for i, item := range items {
		require.NoError(t, results[i].Err)
		require.Equal(t, item*10, results[i].Result)
	}
}

func TestRun_PerItemErrorsDoNotFailTheBatch(t *testing.T) {
	boom := errors.New("boom")
	items := []int{1, 2, 3}

	results := workerpool.Run(context.Background(), 3, items, func(ctx context.Context, item int) (int, error) {
		if item == 2 {
			return 0, boom
		}
		return item, nil
	})

	require.Len(t, results, 3)
	require.NoError(t, results[0].Err)
	require.Equal(t, boom, results[1].Err)
	require.NoError(t, results[2].Err)
}

func TestRun_NonPositiveConcurrencyStillRunsSequentially(t *testing.T) {
	items := []int{1, 2, 3}

	results := workerpool.Run(context.Background(), 0, items, func(ctx context.Context, item int) (int, error) {
		return item, nil
	})

	require.Len(t, results, 3)
	for i, item := range items {
		require.Equal(t, item, results[i].Result)
	}
}

func TestRun_EmptyItemsReturnsEmptyResults(t *testing.T) {
	results := workerpool.Run(context.Background(), 4, []int{}, func(ctx context.Context, item int) (int, error) {
		t.Fatal("fn should not be called for an empty item list")
		return 0, nil
	})

	require.Len(t, results, 0)
}
