// Package sqldb persists accounts in a relational database through gorm.
// SQLite is the default engine; postgres and mysql are selected by
// configuration or the BANK_STORE_ENGINE environment variable.
package sqldb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bankingrestapi/bank/internal/domain"
	"github.com/bankingrestapi/bank/internal/ports"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type Options struct {
	Engine       Engine
	DSN          string
	DataDir      string
	MaxOpenConns int
	Logger       *zap.Logger
}

type Store struct {
	db     *gorm.DB
	engine Engine
	logger *zap.Logger
}

var _ ports.AccountRepository = (*Store)(nil)

// NewStore opens the database selected by opts and migrates the schema.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := resolveEngine(opts.Engine)
	dsn := opts.DSN
	if dsn == "" {
		dsn = dsnFromEnv(engine)
	}

	var dialector gorm.Dialector
	switch engine {
	case SqliteEngine:
		if opts.DataDir == "" {
			return nil, errors.New("sqlite store requires a data directory")
		}
		if err := os.MkdirAll(opts.DataDir, 0o700); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		log.Info("using SQLite store engine", zap.String("data_dir", opts.DataDir))
		dialector = sqlite.Open(filepath.Join(opts.DataDir, sqliteFileName))
	case PostgresEngine:
		if dsn == "" {
			return nil, fmt.Errorf("%s is not set", PostgresDsnEnv)
		}
		log.Info("using Postgres store engine")
		dialector = postgres.Open(dsn)
	case MysqlEngine:
		if dsn == "" {
			return nil, fmt.Errorf("%s is not set", MysqlDsnEnv)
		}
		log.Info("using MySQL store engine")
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported kind of store: %s", engine)
	}

	db, err := gorm.Open(dialector, getGormConfig(engine))
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", engine, err)
	}

	return NewStoreFromDB(ctx, db, engine, opts.MaxOpenConns, log)
}

// NewStoreFromDB wraps an open gorm handle, sizes its pool and runs AutoMigrate.
func NewStoreFromDB(ctx context.Context, db *gorm.DB, engine Engine, maxOpenConns int, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	conns := maxOpenConns
	if conns <= 0 {
		conns = runtime.NumCPU()
	}
	if engine == SqliteEngine {
		// one writer per sqlite file
		conns = 1
	}
	sqlDB.SetMaxOpenConns(conns)

	if err := db.WithContext(ctx).AutoMigrate(&accountRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &Store{db: db, engine: engine, logger: log}, nil
}

func getGormConfig(engine Engine) *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// no prepared statements on the single sqlite connection
		PrepareStmt: engine != SqliteEngine,
	}
}

func (s *Store) Engine() Engine {
	return s.engine
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.logger.Debug("closing store", zap.String("engine", string(s.engine)))
	return sqlDB.Close()
}

func (s *Store) FindByID(ctx context.Context, id domain.AccountID) (domain.Account, bool, error) {
	var record accountRecord
	err := s.db.WithContext(ctx).Take(&record, "id = ?", int64(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, fmt.Errorf("get account %d: %w", id, err)
	}

	return fromRecord(record), true, nil
}

func (s *Store) ExistsByID(ctx context.Context, id domain.AccountID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&accountRecord{}).Where("id = ?", int64(id)).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check account %d: %w", id, err)
	}

	return count > 0, nil
}

func (s *Store) FindAll(ctx context.Context) ([]domain.Account, error) {
	var records []accountRecord
	if err := s.db.WithContext(ctx).Order("id asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return fromRecords(records), nil
}

func (s *Store) FindAllByID(ctx context.Context, ids []domain.AccountID) ([]domain.Account, error) {
	if len(ids) == 0 {
		return []domain.Account{}, nil
	}

	keys := make([]int64, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, int64(id))
	}

	var records []accountRecord
	if err := s.db.WithContext(ctx).Where("id IN ?", keys).Order("id asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list accounts by id: %w", err)
	}

	return fromRecords(records), nil
}

func (s *Store) FindPage(ctx context.Context, req domain.PageRequest) (domain.Page, error) {
	if err := req.Validate(); err != nil {
		return domain.Page{}, err
	}

	total, err := s.Count(ctx)
	if err != nil {
		return domain.Page{}, err
	}
	if int64(req.Offset()) >= total {
		return domain.NewPage(nil, req, total), nil
	}

	query := s.db.WithContext(ctx).Order(clause.OrderByColumn{
		Column: clause.Column{Name: req.Sort.Field.Column()},
		Desc:   req.Sort.Descending,
	})
	if req.Sort.Field.Column() != string(domain.SortByID) {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: string(domain.SortByID)}})
	}

	var records []accountRecord
	if err := query.Offset(req.Offset()).Limit(req.Size).Find(&records).Error; err != nil {
		return domain.Page{}, fmt.Errorf("page accounts: %w", err)
	}

	return domain.NewPage(fromRecords(records), req, total), nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&accountRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}

	return count, nil
}

func (s *Store) Save(ctx context.Context, account domain.Account) (domain.Account, error) {
	if account.ID < 0 {
		return domain.Account{}, fmt.Errorf("save account: %w: %d", domain.ErrInvalidAccountID, account.ID)
	}

	record := toRecord(account)

	if account.ID.IsZero() {
		if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
			return domain.Account{}, fmt.Errorf("create account: %w", err)
		}
		return fromRecord(record), nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		return s.syncSequence(tx)
	})
	if err != nil {
		return domain.Account{}, fmt.Errorf("save account %d: %w", account.ID, err)
	}

	return fromRecord(record), nil
}

func (s *Store) DeleteByID(ctx context.Context, id domain.AccountID) error {
	if err := s.db.WithContext(ctx).Delete(&accountRecord{}, int64(id)).Error; err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}

	return nil
}

// syncSequence moves the postgres id sequence past explicitly inserted keys.
// sqlite and mysql advance their counters on their own.
func (s *Store) syncSequence(tx *gorm.DB) error {
	if s.engine != PostgresEngine {
		return nil
	}

	return tx.Exec(
		"SELECT setval(pg_get_serial_sequence('accounts', 'id'), GREATEST((SELECT COALESCE(MAX(id), 0) FROM accounts), 1))",
	).Error
}
