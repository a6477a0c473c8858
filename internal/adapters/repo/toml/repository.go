package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bankingrestapi/bank/internal/domain"
	"github.com/bankingrestapi/bank/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	StorePathKey     = "store.path"
	accountsFileMode = 0o600
	accountsDirMode  = 0o700
	defaultStoreDir  = ".bank"
	defaultStoreFile = "accounts.toml"
	tempFilePattern  = ".accounts-*.toml.tmp"
)

type Repository struct {
	accountsPath string
	mu           *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.AccountRepository = (*Repository)(nil)

func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, defaultStoreDir, defaultStoreFile), nil
}

// NewRepository opens the file named by the store.path key of cfg, falling
// back to ~/.bank/accounts.toml. The file is created on first write.
func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	if !cfg.IsSet(StorePathKey) || cfg.GetString(StorePathKey) == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		cfg.SetDefault(StorePathKey, defaultPath)
	}

	accountsPath := cfg.GetString(StorePathKey)
	if accountsPath == "" {
		return nil, errors.New("accounts path is empty")
	}
	accountsPath, err := normalizeAccountsPath(accountsPath)
	if err != nil {
		return nil, err
	}

	return &Repository{accountsPath: accountsPath, mu: lockForPath(accountsPath)}, nil
}

func (r *Repository) Path() string {
	return r.accountsPath
}

func (r *Repository) Save(ctx context.Context, account domain.Account) (domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return domain.Account{}, err
	}
	if account.ID < 0 {
		return domain.Account{}, fmt.Errorf("save account: %w: %d", domain.ErrInvalidAccountID, account.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Account{}, err
	}

	if account.ID.IsZero() {
		account.ID = domain.AccountID(file.NextID)
	}

	encoded := toSchema(account)
	if i := file.indexOf(encoded.ID); i >= 0 {
		file.Accounts[i] = encoded
	} else {
		file.Accounts = append(file.Accounts, encoded)
	}
	file.applyDefaults()

	if err := ctx.Err(); err != nil {
		return domain.Account{}, err
	}

	if err := r.writeSchema(file); err != nil {
		return domain.Account{}, err
	}

	return fromSchema(encoded), nil
}

func (r *Repository) DeleteByID(ctx context.Context, id domain.AccountID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	i := file.indexOf(int64(id))
	if i < 0 {
		return nil
	}
	file.Accounts = append(file.Accounts[:i], file.Accounts[i+1:]...)

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) FindByID(ctx context.Context, id domain.AccountID) (domain.Account, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Account{}, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Account{}, false, err
	}

	if i := file.indexOf(int64(id)); i >= 0 {
		return fromSchema(file.Accounts[i]), true, nil
	}

	return domain.Account{}, false, nil
}

func (r *Repository) ExistsByID(ctx context.Context, id domain.AccountID) (bool, error) {
	_, found, err := r.FindByID(ctx, id)
	return found, err
}

func (r *Repository) FindAll(ctx context.Context) ([]domain.Account, error) {
	return r.list(ctx, nil)
}

func (r *Repository) FindAllByID(ctx context.Context, ids []domain.AccountID) ([]domain.Account, error) {
	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[int64(id)] = struct{}{}
	}

	return r.list(ctx, func(entry accountSchema) bool {
		_, ok := wanted[entry.ID]
		return ok
	})
}

func (r *Repository) FindPage(ctx context.Context, req domain.PageRequest) (domain.Page, error) {
	if err := req.Validate(); err != nil {
		return domain.Page{}, err
	}

	accounts, err := r.list(ctx, nil)
	if err != nil {
		return domain.Page{}, err
	}

	return domain.PaginateAccounts(accounts, req)
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return 0, err
	}

	return int64(len(file.Accounts)), nil
}

func (r *Repository) list(ctx context.Context, keep func(accountSchema) bool) ([]domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(file.Accounts))
	for _, entry := range file.Accounts {
		if keep != nil && !keep(entry) {
			continue
		}
		accounts = append(accounts, fromSchema(entry))
	}
	domain.SortAccounts(accounts, domain.Sort{Field: domain.SortByID})

	return accounts, nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.accountsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := fileSchema{}
			file.applyDefaults()
			return file, nil
		}
		return fileSchema{}, fmt.Errorf("read accounts file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode accounts file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizeAccountsPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve accounts path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

// writeSchema replaces the accounts file through a temp file and rename so a
// crash never leaves a half-written document behind.
func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.accountsPath), accountsDirMode); err != nil {
		return fmt.Errorf("create accounts directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode accounts file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.accountsPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp accounts file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp accounts file: %w", err)
	}

	if err := tempFile.Chmod(accountsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp accounts file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp accounts file: %w", err)
	}

	if err := os.Rename(tempName, r.accountsPath); err != nil {
		return fmt.Errorf("replace accounts file: %w", err)
	}

	cleanup = false

	return nil
}

func toSchema(account domain.Account) accountSchema {
	return accountSchema{
		ID:                int64(account.ID),
		AccountHolderName: account.AccountHolderName,
		Balance:           account.Balance,
		CreatedAt:         formatTime(account.CreatedAt),
		UpdatedAt:         formatTime(account.UpdatedAt),
	}
}

func fromSchema(account accountSchema) domain.Account {
	return domain.Account{
		ID:                domain.AccountID(account.ID),
		AccountHolderName: account.AccountHolderName,
		Balance:           account.Balance,
		CreatedAt:         parseTime(account.CreatedAt),
		UpdatedAt:         parseTime(account.UpdatedAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339Nano)
}
