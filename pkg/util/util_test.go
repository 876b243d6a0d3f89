package util

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	ts := time.Date(2023, 11, 10, 7, 5, 9, 0, time.UTC)
	assert.Equal(t, "2023.11.10", FormatDate(ts, "YYYY.MM.DD"))
	assert.Equal(t, "10/11/23", FormatDate(ts, "DD/MM/YY"))
	assert.Equal(t, "2023-11-10 07:05:09", FormatDate(ts, "YYYY-MM-DD hh:mm:ss"))
	assert.Empty(t, FormatDate(time.Time{}, "YYYY"))
}

func TestParallel(t *testing.T) {
	var sum atomic.Int64
	err := Parallel(context.Background(), []int{1, 2, 3, 4, 5}, 2, func(_ context.Context, n int) error {
		sum.Add(int64(n))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), sum.Load())
}

func TestParallel_JoinsEveryError(t *testing.T) {
	errOdd := errors.New("odd")
	var calls atomic.Int64
	err := Parallel(context.Background(), []int{1, 2, 3}, 3, func(_ context.Context, n int) error {
		calls.Add(1)
		if n%2 == 1 {
			return errOdd
		}
		return nil
	})
	assert.ErrorIs(t, err, errOdd)
	assert.Equal(t, int64(3), calls.Load())

	var joined interface{ Unwrap() []error }
	require.ErrorAs(t, err, &joined)
	assert.Len(t, joined.Unwrap(), 2)
}

func TestParallel_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Parallel(ctx, []int{1, 2}, 1, func(context.Context, int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
