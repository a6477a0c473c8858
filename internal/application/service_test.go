package application

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	tomlrepo "github.com/bankingrestapi/bank/internal/adapters/repo/toml"
	"github.com/bankingrestapi/bank/internal/domain"
	"github.com/bankingrestapi/bank/internal/ports/mocks"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, time.January, 2, 10, 0, 0, 0, time.UTC)

func TestServiceOpenStampsAndTrimsHolder(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	clock := mocks.NewMockClock(t)
	service := NewService(repo, clock, zap.NewNop())

	clock.EXPECT().Now().Return(testNow).Once()
	repo.EXPECT().Save(mockAnyContext(), domain.Account{
		AccountHolderName: "Ada Lovelace",
		Balance:           25,
		CreatedAt:         testNow,
		UpdatedAt:         testNow,
	}).RunAndReturn(func(_ context.Context, account domain.Account) (domain.Account, error) {
		account.ID = 1
		return account, nil
	})

	account, err := service.Open(context.Background(), OpenAccountCommand{HolderName: "  Ada Lovelace ", InitialBalance: 25})
	require.NoError(t, err)
	assert.Equal(t, domain.AccountID(1), account.ID)
	assert.Equal(t, "Ada Lovelace", account.AccountHolderName)
}

func TestServiceOpenRejectsInvalidInput(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	clock := mocks.NewMockClock(t)
	service := NewService(repo, clock, zap.NewNop())

	_, err := service.Open(context.Background(), OpenAccountCommand{HolderName: "   "})
	require.ErrorIs(t, err, domain.ErrInvalidHolderName)

	_, err = service.Open(context.Background(), OpenAccountCommand{HolderName: "Ada", InitialBalance: -1})
	require.ErrorIs(t, err, domain.ErrNegativeBalance)

	_, err = service.Open(context.Background(), OpenAccountCommand{HolderName: "Ada", InitialBalance: math.NaN()})
	require.ErrorIs(t, err, domain.ErrNegativeBalance)
}

func TestServiceOpenWrapsRepositoryError(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	clock := mocks.NewMockClock(t)
	service := NewService(repo, clock, zap.NewNop())

	saveErr := errors.New("disk full")
	clock.EXPECT().Now().Return(testNow).Once()
	repo.EXPECT().Save(mockAnyContext(), mock.Anything).Return(domain.Account{}, saveErr)

	_, err := service.Open(context.Background(), OpenAccountCommand{HolderName: "Ada"})
	require.ErrorIs(t, err, saveErr)
	assert.ErrorContains(t, err, "save new account")
}

func TestServiceGetTurnsAbsenceIntoNotFound(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	service := NewService(repo, mocks.NewMockClock(t), zap.NewNop())

	repo.EXPECT().FindByID(mockAnyContext(), domain.AccountID(4)).Return(domain.Account{}, false, nil)

	_, err := service.Get(context.Background(), 4)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestServiceGetReturnsRepositoryError(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	service := NewService(repo, mocks.NewMockClock(t), zap.NewNop())

	readErr := errors.New("connection refused")
	repo.EXPECT().FindByID(mockAnyContext(), domain.AccountID(4)).Return(domain.Account{}, false, readErr)

	_, err := service.Get(context.Background(), 4)
	require.ErrorIs(t, err, readErr)
	assert.False(t, errors.Is(err, domain.ErrAccountNotFound))
}

func TestServiceDepositSavesNewBalance(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	clock := mocks.NewMockClock(t)
	service := NewService(repo, clock, zap.NewNop())

	created := testNow.Add(-time.Hour)
	account := domain.Account{ID: 2, AccountHolderName: "Ada", Balance: 10, CreatedAt: created, UpdatedAt: created}
	repo.EXPECT().FindByID(mockAnyContext(), domain.AccountID(2)).Return(account, true, nil)
	clock.EXPECT().Now().Return(testNow).Once()

	want := account
	want.Balance = 35
	want.UpdatedAt = testNow
	repo.EXPECT().Save(mockAnyContext(), want).Return(want, nil)

	got, err := service.Deposit(context.Background(), 2, 25)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestServiceWithdrawRejectsOverdraftWithoutSaving(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	service := NewService(repo, mocks.NewMockClock(t), zap.NewNop())

	repo.EXPECT().FindByID(mockAnyContext(), domain.AccountID(2)).Return(domain.Account{ID: 2, AccountHolderName: "Ada", Balance: 10}, true, nil)

	_, err := service.Withdraw(context.Background(), 2, 10.01)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestServiceDepositRejectsNonPositiveAmount(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	service := NewService(repo, mocks.NewMockClock(t), zap.NewNop())

	repo.EXPECT().FindByID(mockAnyContext(), domain.AccountID(2)).Return(domain.Account{ID: 2, AccountHolderName: "Ada"}, true, nil)

	_, err := service.Deposit(context.Background(), 2, 0)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestServiceRenameValidatesBeforeLoading(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	service := NewService(repo, mocks.NewMockClock(t), zap.NewNop())

	_, err := service.Rename(context.Background(), 2, "")
	require.ErrorIs(t, err, domain.ErrInvalidHolderName)
}

func TestServiceCloseUnknownAccount(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	service := NewService(repo, mocks.NewMockClock(t), zap.NewNop())

	repo.EXPECT().ExistsByID(mockAnyContext(), domain.AccountID(9)).Return(false, nil)

	err := service.Close(context.Background(), 9)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestServiceCloseDeletesExistingAccount(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	service := NewService(repo, mocks.NewMockClock(t), zap.NewNop())

	repo.EXPECT().ExistsByID(mockAnyContext(), domain.AccountID(9)).Return(true, nil)
	repo.EXPECT().DeleteByID(mockAnyContext(), domain.AccountID(9)).Return(nil)

	require.NoError(t, service.Close(context.Background(), 9))
}

func TestServiceListErrorsAreWrapped(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	service := NewService(repo, mocks.NewMockClock(t), zap.NewNop())

	listErr := errors.New("list failed")
	repo.EXPECT().FindAll(mockAnyContext()).Return(nil, listErr)
	repo.EXPECT().Count(mockAnyContext()).Return(int64(0), listErr)
	repo.EXPECT().FindPage(mockAnyContext(), mock.Anything).Return(domain.Page{}, listErr)

	_, err := service.List(context.Background())
	require.ErrorIs(t, err, listErr)
	_, err = service.Count(context.Background())
	require.ErrorIs(t, err, listErr)
	_, err = service.ListPage(context.Background(), domain.PageRequest{Size: 5})
	require.ErrorIs(t, err, listErr)
}

func TestServiceSummaryTotalsBalances(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	clock := mocks.NewMockClock(t)
	service := NewService(repo, clock, zap.NewNop())

	repo.EXPECT().FindAll(mockAnyContext()).Return([]domain.Account{
		{ID: 1, AccountHolderName: "a", Balance: 10},
		{ID: 2, AccountHolderName: "b", Balance: 32.5},
	}, nil)
	clock.EXPECT().Now().Return(testNow)

	summary, err := service.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count())
	assert.Equal(t, 42.5, summary.TotalBalance)
	assert.Equal(t, 32.5, summary.LargestBalance)
	assert.Equal(t, testNow, summary.GeneratedAt)
}

func TestServiceSummaryOfEmptyStore(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	clock := mocks.NewMockClock(t)
	service := NewService(repo, clock, zap.NewNop())

	repo.EXPECT().FindAll(mockAnyContext()).Return(nil, nil)
	clock.EXPECT().Now().Return(testNow)

	summary, err := service.Summary(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, summary.Accounts)
	assert.Zero(t, summary.Count())
	assert.Zero(t, summary.TotalBalance)
}

func TestServiceBalancesPersistAcrossServiceInstances(t *testing.T) {
	t.Parallel()

	repo := newTOMLRepository(t)

	serviceA := NewService(repo, nil, nil)
	opened, err := serviceA.Open(context.Background(), OpenAccountCommand{HolderName: "Primary", InitialBalance: 100})
	require.NoError(t, err)
	_, err = serviceA.Withdraw(context.Background(), opened.ID, 40)
	require.NoError(t, err)
	_, err = serviceA.Rename(context.Background(), opened.ID, "Checking")
	require.NoError(t, err)

	serviceB := NewService(repo, nil, nil)
	got, err := serviceB.Get(context.Background(), opened.ID)
	require.NoError(t, err)
	assert.Equal(t, "Checking", got.AccountHolderName)
	assert.Equal(t, 60.0, got.Balance)
	assert.True(t, got.CreatedAt.Equal(opened.CreatedAt))
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	require.NoError(t, serviceB.Close(context.Background(), opened.ID))
	_, err = serviceA.Get(context.Background(), opened.ID)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func newTOMLRepository(t *testing.T) *tomlrepo.Repository {
	t.Helper()

	cfg := viper.New()
	cfg.Set(tomlrepo.StorePathKey, filepath.Join(t.TempDir(), "accounts.toml"))

	repo, err := tomlrepo.NewRepository(cfg)
	require.NoError(t, err)
	return repo
}

func mockAnyContext() interface{} {
	return mock.Anything
}
