// Package porttest holds behaviour checks shared by every ports.AccountRepository
// implementation.
package porttest

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/bankingrestapi/bank/internal/domain"
	"github.com/bankingrestapi/bank/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunAccountRepositoryContract runs the repository contract against fresh,
// empty repositories produced by newRepo.
func RunAccountRepositoryContract(t *testing.T, newRepo func(t *testing.T) ports.AccountRepository) {
	t.Helper()

	t.Run("save assigns key and round trips", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		saved, err := repo.Save(ctx, sampleAccount("Ada Lovelace", 120.5))
		require.NoError(t, err)
		require.False(t, saved.ID.IsZero())

		got, found, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		require.True(t, found)
		AssertAccountEqual(t, saved, got)
	})

	t.Run("unknown key is absent without error", func(t *testing.T) {
		repo := newRepo(t)

		got, found, err := repo.FindByID(context.Background(), 9_999)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, domain.Account{}, got)

		exists, err := repo.ExistsByID(context.Background(), 9_999)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("save with existing key replaces record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		saved, err := repo.Save(ctx, sampleAccount("Grace Hopper", 10))
		require.NoError(t, err)

		saved.AccountHolderName = "Rear Admiral Hopper"
		saved.Balance = 75.25
		saved.UpdatedAt = saved.UpdatedAt.Add(time.Hour)
		updated, err := repo.Save(ctx, saved)
		require.NoError(t, err)
		assert.Equal(t, saved.ID, updated.ID)

		got, found, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		require.True(t, found)
		AssertAccountEqual(t, saved, got)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("save with unknown explicit key inserts under that key", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		account := sampleAccount("Katherine Johnson", 5)
		account.ID = 40
		saved, err := repo.Save(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, domain.AccountID(40), saved.ID)

		next, err := repo.Save(ctx, sampleAccount("Dorothy Vaughan", 6))
		require.NoError(t, err)
		assert.NotEqual(t, domain.AccountID(40), next.ID)

		exists, err := repo.ExistsByID(ctx, 40)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("delete removes record and is a no-op for unknown keys", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		saved, err := repo.Save(ctx, sampleAccount("Alan Turing", 1))
		require.NoError(t, err)

		require.NoError(t, repo.DeleteByID(ctx, saved.ID))

		_, found, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.False(t, found)

		require.NoError(t, repo.DeleteByID(ctx, saved.ID))
		require.NoError(t, repo.DeleteByID(ctx, 12_345))
	})

	t.Run("count grows by the number of new records", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		before, err := repo.Count(ctx)
		require.NoError(t, err)

		for _, name := range []string{"alice", "bob", "carol"} {
			_, err := repo.Save(ctx, sampleAccount(name, 1))
			require.NoError(t, err)
		}

		after, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, before+3, after)
	})

	t.Run("find all returns live keys in ascending order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var saved []domain.Account
		for _, name := range []string{"alice", "bob", "carol", "dave"} {
			account, err := repo.Save(ctx, sampleAccount(name, 1))
			require.NoError(t, err)
			saved = append(saved, account)
		}
		require.NoError(t, repo.DeleteByID(ctx, saved[1].ID))

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.AccountID{saved[0].ID, saved[2].ID, saved[3].ID}, IDs(all))
	})

	t.Run("find all by id skips unknown and duplicate keys", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, err := repo.Save(ctx, sampleAccount("alice", 1))
		require.NoError(t, err)
		second, err := repo.Save(ctx, sampleAccount("bob", 2))
		require.NoError(t, err)

		got, err := repo.FindAllByID(ctx, []domain.AccountID{second.ID, 777, first.ID, second.ID})
		require.NoError(t, err)
		assert.Equal(t, []domain.AccountID{first.ID, second.ID}, IDs(got))

		got, err = repo.FindAllByID(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("find page sorts and slices", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		balances := map[string]float64{"alice": 30, "bob": 10, "carol": 20, "dave": 10, "erin": 50}
		ids := map[string]domain.AccountID{}
		for _, name := range []string{"alice", "bob", "carol", "dave", "erin"} {
			saved, err := repo.Save(ctx, sampleAccount(name, balances[name]))
			require.NoError(t, err)
			ids[name] = saved.ID
		}

		req := domain.PageRequest{Number: 0, Size: 2, Sort: domain.Sort{Field: domain.SortByBalance}}
		page, err := repo.FindPage(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, []domain.AccountID{ids["bob"], ids["dave"]}, IDs(page.Items))
		assert.Equal(t, int64(5), page.TotalItems)
		assert.Equal(t, 3, page.TotalPages)
		assert.True(t, page.HasNext())

		req = domain.PageRequest{Number: 1, Size: 2, Sort: domain.Sort{Field: domain.SortByHolderName, Descending: true}}
		page, err = repo.FindPage(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, []domain.AccountID{ids["carol"], ids["bob"]}, IDs(page.Items))
		assert.True(t, page.HasPrevious())

		page, err = repo.FindPage(ctx, domain.PageRequest{Number: 9, Size: 2})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, int64(5), page.TotalItems)
	})

	t.Run("find page rejects invalid requests", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.FindPage(context.Background(), domain.PageRequest{Size: 0})
		require.ErrorIs(t, err, domain.ErrInvalidPageRequest)

		_, err = repo.FindPage(context.Background(), domain.PageRequest{Size: 5, Sort: domain.Sort{Field: "ssn"}})
		require.ErrorIs(t, err, domain.ErrInvalidSortField)

		_, err = repo.FindPage(context.Background(), domain.PageRequest{Number: math.MaxInt/2 + 1, Size: 3})
		require.ErrorIs(t, err, domain.ErrInvalidPageRequest)
	})

	t.Run("find page far past the end is empty but reports totals", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, name := range []string{"alice", "bob"} {
			_, err := repo.Save(ctx, sampleAccount(name, 10))
			require.NoError(t, err)
		}

		for _, number := range []int{1, 1000, math.MaxInt / 3} {
			page, err := repo.FindPage(ctx, domain.PageRequest{Number: number, Size: 3})
			require.NoError(t, err)
			assert.Empty(t, page.Items, "page %d", number)
			assert.Equal(t, number, page.Number)
			assert.Equal(t, int64(2), page.TotalItems)
			assert.Equal(t, 1, page.TotalPages)
		}
	})

	t.Run("returned values do not alias stored state", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		saved, err := repo.Save(ctx, sampleAccount("alice", 10))
		require.NoError(t, err)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		all[0].Balance = 1_000_000

		got, _, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, 10.0, got.Balance)
	})
}

// AssertAccountEqual compares accounts field by field, using time.Equal so that
// stores returning a different location for the same instant still match.
func AssertAccountEqual(t *testing.T, want, got domain.Account) {
	t.Helper()

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.AccountHolderName, got.AccountHolderName)
	assert.InDelta(t, want.Balance, got.Balance, 1e-9)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at: want %s, got %s", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updated_at: want %s, got %s", want.UpdatedAt, got.UpdatedAt)
}

func IDs(accounts []domain.Account) []domain.AccountID {
	out := make([]domain.AccountID, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, account.ID)
	}
	return out
}

func sampleAccount(name string, balance float64) domain.Account {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return domain.Account{
		AccountHolderName: name,
		Balance:           balance,
		CreatedAt:         created,
		UpdatedAt:         created,
	}
}
