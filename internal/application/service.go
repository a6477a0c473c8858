package application

import (
	"context"
	"fmt"
	"math"

	"github.com/bankingrestapi/bank/internal/domain"
	"github.com/bankingrestapi/bank/internal/ports"
	"go.uber.org/zap"
)

type Service struct {
	repo   ports.AccountRepository
	clock  ports.Clock
	logger *zap.Logger
}

func NewService(repo ports.AccountRepository, clock ports.Clock, logger *zap.Logger) *Service {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		repo:   repo,
		clock:  clock,
		logger: logger.With(zap.String("component", "account_service")),
	}
}

func (s *Service) Open(ctx context.Context, cmd OpenAccountCommand) (domain.Account, error) {
	name, err := domain.NormalizeHolderName(cmd.HolderName)
	if err != nil {
		return domain.Account{}, err
	}
	if cmd.InitialBalance < 0 || math.IsNaN(cmd.InitialBalance) || math.IsInf(cmd.InitialBalance, 0) {
		return domain.Account{}, fmt.Errorf("%w: %v", domain.ErrNegativeBalance, cmd.InitialBalance)
	}

	now := s.clock.Now()
	account, err := s.repo.Save(ctx, domain.Account{
		AccountHolderName: name,
		Balance:           cmd.InitialBalance,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return domain.Account{}, fmt.Errorf("save new account: %w", err)
	}

	s.logger.Info("account opened", zap.Int64("account_id", int64(account.ID)))
	return account, nil
}

func (s *Service) Get(ctx context.Context, id domain.AccountID) (domain.Account, error) {
	account, found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Account{}, fmt.Errorf("get account by id: %w", err)
	}
	if !found {
		return domain.Account{}, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	return account, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return accounts, nil
}

func (s *Service) ListPage(ctx context.Context, req domain.PageRequest) (domain.Page, error) {
	page, err := s.repo.FindPage(ctx, req)
	if err != nil {
		return domain.Page{}, fmt.Errorf("list accounts page: %w", err)
	}

	return page, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}

	return count, nil
}

func (s *Service) Rename(ctx context.Context, id domain.AccountID, holderName string) (domain.Account, error) {
	name, err := domain.NormalizeHolderName(holderName)
	if err != nil {
		return domain.Account{}, err
	}

	return s.update(ctx, id, "rename", func(account *domain.Account) error {
		account.AccountHolderName = name
		return nil
	})
}

func (s *Service) Deposit(ctx context.Context, id domain.AccountID, amount float64) (domain.Account, error) {
	return s.update(ctx, id, "deposit", func(account *domain.Account) error {
		return account.Deposit(amount)
	})
}

func (s *Service) Withdraw(ctx context.Context, id domain.AccountID, amount float64) (domain.Account, error) {
	return s.update(ctx, id, "withdraw", func(account *domain.Account) error {
		return account.Withdraw(amount)
	})
}

// Close deletes the account. Unlike the repository, it reports an unknown
// key as domain.ErrAccountNotFound.
func (s *Service) Close(ctx context.Context, id domain.AccountID) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("check account: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	s.logger.Info("account closed", zap.Int64("account_id", int64(id)))
	return nil
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	accounts, err := s.List(ctx)
	if err != nil {
		return Summary{}, err
	}

	return newSummary(accounts, s.clock.Now()), nil
}

func (s *Service) update(ctx context.Context, id domain.AccountID, op string, mutate func(*domain.Account) error) (domain.Account, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	if err := mutate(&account); err != nil {
		return domain.Account{}, err
	}
	account.UpdatedAt = s.clock.Now()

	saved, err := s.repo.Save(ctx, account)
	if err != nil {
		return domain.Account{}, fmt.Errorf("save account %s: %w", op, err)
	}

	s.logger.Debug("account updated", zap.String("op", op), zap.Int64("account_id", int64(id)))
	return saved, nil
}
