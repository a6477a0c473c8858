package sqldb

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bankingrestapi/bank/internal/domain"
	"github.com/bankingrestapi/bank/internal/ports"
	"github.com/bankingrestapi/bank/internal/ports/porttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestStoreContract(t *testing.T) {
	porttest.RunAccountRepositoryContract(t, func(t *testing.T) ports.AccountRepository {
		return newTestStore(t)
	})
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	if engineFromEnv() != "" && engineFromEnv() != SqliteEngine {
		t.Skip("reopen check only applies to the sqlite file engine")
	}

	dataDir := t.TempDir()
	ctx := context.Background()
	created := time.Date(2026, 3, 2, 8, 15, 0, 0, time.UTC)

	store, err := NewStore(ctx, Options{Engine: SqliteEngine, DataDir: dataDir})
	require.NoError(t, err)
	saved, err := store.Save(ctx, domain.Account{AccountHolderName: "Ada", Balance: 42.5, CreatedAt: created, UpdatedAt: created})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = os.Stat(filepath.Join(dataDir, sqliteFileName))
	require.NoError(t, err)

	reopened, err := NewStore(ctx, Options{Engine: SqliteEngine, DataDir: dataDir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, found, err := reopened.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.True(t, found)
	porttest.AssertAccountEqual(t, saved, got)
}

func TestStoreZeroTimestampsRoundTripAsZero(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, domain.Account{AccountHolderName: "no clock"})
	require.NoError(t, err)

	got, found, err := store.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.CreatedAt.IsZero())
	assert.True(t, got.UpdatedAt.IsZero())
}

func TestStoreSaveRejectsNegativeKey(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(context.Background(), domain.Account{ID: -4, AccountHolderName: "x"})
	require.ErrorIs(t, err, domain.ErrInvalidAccountID)
}

func TestStoreCanceledContextFails(t *testing.T) {
	store := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Count(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStoreRequiresDSNForServerEngines(t *testing.T) {
	t.Setenv(EngineEnv, "")
	t.Setenv(PostgresDsnEnv, "")
	t.Setenv(MysqlDsnEnv, "")

	_, err := NewStore(context.Background(), Options{Engine: PostgresEngine})
	require.ErrorContains(t, err, PostgresDsnEnv)

	_, err = NewStore(context.Background(), Options{Engine: MysqlEngine})
	require.ErrorContains(t, err, MysqlDsnEnv)

	_, err = NewStore(context.Background(), Options{Engine: SqliteEngine})
	require.ErrorContains(t, err, "data directory")
}

func TestParseEngine(t *testing.T) {
	tests := []struct {
		raw     string
		want    Engine
		wantErr bool
	}{
		{raw: "", want: SqliteEngine},
		{raw: "SQLite", want: SqliteEngine},
		{raw: " postgres ", want: PostgresEngine},
		{raw: "mysql", want: MysqlEngine},
		{raw: "jsonfile", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseEngine(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveEnginePrefersEnvironment(t *testing.T) {
	t.Setenv(EngineEnv, "mysql")
	assert.Equal(t, MysqlEngine, resolveEngine(PostgresEngine))

	t.Setenv(EngineEnv, "bogus")
	assert.Equal(t, SqliteEngine, resolveEngine(PostgresEngine))

	t.Setenv(EngineEnv, "")
	assert.Equal(t, PostgresEngine, resolveEngine(PostgresEngine))
	assert.Equal(t, SqliteEngine, resolveEngine(""))
}

// newTestStore returns an empty store for the engine named by BANK_STORE_ENGINE,
// sqlite when unset. Server engines share the container started in TestMain
// and are truncated before each use.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	engine := engineFromEnv()
	if engine == "" {
		engine = SqliteEngine
	}

	var (
		store *Store
		err   error
	)
	switch engine {
	case SqliteEngine:
		store, err = NewStore(ctx, Options{Engine: SqliteEngine, DataDir: t.TempDir(), Logger: zap.NewNop()})
	default:
		store, err = NewStore(ctx, Options{Engine: engine, MaxOpenConns: 4, Logger: zap.NewNop()})
		if err == nil {
			err = truncateAccounts(store.db, engine)
		}
	}
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func truncateAccounts(db *gorm.DB, engine Engine) error {
	if engine == PostgresEngine {
		return db.Exec("TRUNCATE TABLE accounts RESTART IDENTITY").Error
	}
	return db.Exec("TRUNCATE TABLE accounts").Error
}
