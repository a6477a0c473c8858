package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bankingrestapi/bank/internal/domain"
	"github.com/bankingrestapi/bank/internal/ports/mocks"
	"github.com/bankingrestapi/bank/internal/ports/porttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCopyAccountsPreservesKeysAcrossPages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	src := newTOMLRepository(t)
	dst := newTOMLRepository(t)

	total := migrationPageSize + 7
	created := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < total; i++ {
		_, err := src.Save(ctx, domain.Account{
			AccountHolderName: fmt.Sprintf("holder-%03d", i),
			Balance:           float64(i),
			CreatedAt:         created,
			UpdatedAt:         created,
		})
		require.NoError(t, err)
	}
	require.NoError(t, src.DeleteByID(ctx, 3))

	var reported []int
	copied, err := CopyAccounts(ctx, src, dst, func(n int) { reported = append(reported, n) })
	require.NoError(t, err)
	assert.Equal(t, total-1, copied)
	assert.Equal(t, []int{migrationPageSize, total - 1}, reported)

	want, err := src.FindAll(ctx)
	require.NoError(t, err)
	got, err := dst.FindAll(ctx)
	require.NoError(t, err)
	require.Equal(t, porttest.IDs(want), porttest.IDs(got))
	for i := range want {
		porttest.AssertAccountEqual(t, want[i], got[i])
	}

	again, err := CopyAccounts(ctx, src, dst, nil)
	require.NoError(t, err)
	assert.Equal(t, copied, again)
	count, err := dst.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(total-1), count)
}

func TestCopyAccountsEmptySource(t *testing.T) {
	t.Parallel()

	calls := 0
	copied, err := CopyAccounts(context.Background(), newTOMLRepository(t), newTOMLRepository(t), func(int) { calls++ })
	require.NoError(t, err)
	assert.Zero(t, copied)
	assert.Zero(t, calls)
}

func TestCopyAccountsStopsOnWriteError(t *testing.T) {
	ctx := context.Background()
	src := mocks.NewMockAccountRepository(t)
	dst := mocks.NewMockAccountRepository(t)

	req := domain.PageRequest{Size: migrationPageSize, Sort: domain.Sort{Field: domain.SortByID}}
	items := []domain.Account{{ID: 1, AccountHolderName: "a"}, {ID: 2, AccountHolderName: "b"}}
	src.EXPECT().FindPage(mock.Anything, req).Return(domain.NewPage(items, req, 2), nil)

	writeErr := errors.New("constraint violated")
	dst.EXPECT().Save(mock.Anything, items[0]).Return(items[0], nil)
	dst.EXPECT().Save(mock.Anything, items[1]).Return(domain.Account{}, writeErr)

	copied, err := CopyAccounts(ctx, src, dst, nil)
	require.ErrorIs(t, err, writeErr)
	assert.Equal(t, 1, copied)
}

func TestCopyAccountsHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CopyAccounts(ctx, mocks.NewMockAccountRepository(t), mocks.NewMockAccountRepository(t), nil)
	require.ErrorIs(t, err, context.Canceled)
}
