package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	statusadapter "github.com/bankingrestapi/bank/internal/adapters/render/status"
	"github.com/bankingrestapi/bank/internal/adapters/repo/cached"
	"github.com/bankingrestapi/bank/internal/adapters/repo/sqldb"
	tomlrepo "github.com/bankingrestapi/bank/internal/adapters/repo/toml"
	"github.com/bankingrestapi/bank/internal/application"
	"github.com/bankingrestapi/bank/internal/config"
	"github.com/bankingrestapi/bank/internal/logging"
	"github.com/bankingrestapi/bank/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type globalOptions struct {
	configFile string
	storeKind  string
	logLevel   string
}

type app struct {
	viper          *viper.Viper
	config         config.Config
	logger         *zap.Logger
	repo           ports.AccountRepository
	service        *application.Service
	statusRenderer func(application.Summary, statusadapter.RenderOptions) (string, error)
	now            func() time.Time
	closers        []func() error
}

func wireApp(ctx context.Context, opts globalOptions) (*app, error) {
	v, err := config.New(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.storeKind != "" {
		v.Set(config.StoreKindKey, opts.storeKind)
	}
	if opts.logLevel != "" {
		v.Set(config.LogLevelKey, opts.logLevel)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	a := &app{
		viper:          v,
		config:         cfg,
		logger:         logger,
		statusRenderer: statusadapter.Render,
		now:            time.Now,
	}

	repo, closeRepo, err := openRepository(ctx, v, cfg, cfg.Store.Kind, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("wire account repository: %w", err)
	}
	a.closers = append(a.closers, closeRepo)

	if cfg.Cache.Enabled {
		st, err := cached.NewStore(cfg.Cache.RedisURL, cfg.Cache.TTL, cached.DefaultCleanupInterval)
		if err != nil {
			_ = a.close()
			return nil, fmt.Errorf("wire account cache: %w", err)
		}
		repo = cached.NewRepository(repo, st, cfg.Cache.TTL, logging.Component(logger, "account_cache"))
	}

	a.repo = repo
	a.service = application.NewService(repo, ports.SystemClock{}, logger)

	return a, nil
}

// openRepository builds the store of the given kind without any cache in
// front of it. The returned func releases the store.
func openRepository(ctx context.Context, v *viper.Viper, cfg config.Config, kind string, logger *zap.Logger) (ports.AccountRepository, func() error, error) {
	switch kind {
	case config.StoreKindTOML:
		repo, err := tomlrepo.NewRepository(v)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("using TOML account store", zap.String("path", repo.Path()))
		return repo, func() error { return nil }, nil
	case config.StoreKindSQL:
		engine, err := sqldb.ParseEngine(cfg.Store.Engine)
		if err != nil {
			return nil, nil, err
		}
		store, err := sqldb.NewStore(ctx, sqldb.Options{
			Engine:       engine,
			DSN:          cfg.Store.DSN,
			DataDir:      cfg.Store.DataDir,
			MaxOpenConns: cfg.Store.MaxOpenConns,
			Logger:       logging.Component(logger, "sql_store"),
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store kind %q", kind)
	}
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil

	if a.logger != nil {
		// Sync on stderr returns EINVAL on linux
		_ = a.logger.Sync()
	}

	return errors.Join(errs...)
}
