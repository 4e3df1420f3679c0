package main

import (
	"context"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/catalog/cache"
	"github.com/rise-and-shine/catalog/catalog"
	"github.com/rise-and-shine/catalog/cqrs"
	"github.com/rise-and-shine/catalog/cqrs/behavior"
	"github.com/rise-and-shine/catalog/logger"
	"github.com/rise-and-shine/catalog/pg"
	"github.com/rise-and-shine/catalog/rediswr"
	"github.com/rise-and-shine/catalog/repository"
	"github.com/rise-and-shine/catalog/repository/bunrepo"
	"github.com/rise-and-shine/catalog/repository/memrepo"
	"github.com/rise-and-shine/catalog/tracing"
)

type app struct {
	cfg        Config
	logger     logger.Logger
	dispatcher *cqrs.Dispatcher
	seeder     *catalog.Seeder
	closers    []func(ctx context.Context) error
}

func newApp(ctx context.Context, cfg Config) (_ *app, err error) {
	logger.SetGlobal(cfg.Logger)

	a := &app{cfg: cfg, logger: logger.Named("catalogctl")}
	defer func() {
		if err != nil {
			a.close(ctx)
		}
	}()

	shutdown, err := tracing.InitGlobalTracer(ctx, cfg.Tracing, cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	a.closers = append(a.closers, shutdown)

	repos, sessions, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	store, err := a.openCacheStore(ctx)
	if err != nil {
		return nil, err
	}
	svc := cache.NewServiceFromConfig(cfg.Cache, store, cache.WithLogger(logger.Named("cache")))

	a.dispatcher = cqrs.NewDispatcher(
		cqrs.WithLogging(behavior.NewLogging(logger.Global())),
		cqrs.WithTransaction(behavior.NewTransaction(logger.Global())),
		cqrs.WithInnerBehaviors(a.innerBehaviors()...),
		cqrs.WithSessionProvider(sessions),
	)
	if err = catalog.Register(a.dispatcher, repos, svc); err != nil {
		return nil, err
	}
	a.seeder = catalog.NewSeeder(a.dispatcher, logger.Global())

	if cfg.Storage == storageMemory {
		if err = a.seeder.Execute(ctx, catalog.DemoData()); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *app) innerBehaviors() []cqrs.Behavior {
	behaviors := []cqrs.Behavior{
		behavior.NewRecovery(logger.Global()),
		behavior.NewTracing(),
		behavior.NewMeta(a.cfg.ServiceName, a.cfg.ServiceVersion),
	}
	if a.cfg.RequestTimeout > 0 {
		behaviors = append(behaviors, behavior.NewTimeout(a.cfg.RequestTimeout))
	}
	return behaviors
}

func (a *app) openStorage(ctx context.Context) (catalog.Repos, repository.SessionProvider, error) {
	if a.cfg.Storage == storageMemory {
		db := memrepo.NewDB()
		return catalog.NewMemRepos(db), db, nil
	}

	db, err := pg.NewBunDB(ctx, *a.cfg.Postgres, logger.Global())
	if err != nil {
		return catalog.Repos{}, nil, errx.Wrap(err)
	}
	a.closers = append(a.closers, func(context.Context) error { return db.Close() })
	return catalog.NewBunRepos(db), bunrepo.NewProvider(db), nil
}

func (a *app) openCacheStore(ctx context.Context) (cache.Store, error) {
	if a.cfg.Cache.Driver == cache.DriverMemory {
		return cache.NewMemoryStore(a.cfg.Cache.Memory), nil
	}

	client, err := rediswr.Connect(ctx, a.cfg.Cache.Redis.Config)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	return cache.NewRedisStore(client, a.cfg.Cache.Redis.KeyPrefix), nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warnx(errx.Wrap(err))
		}
	}
	_ = logger.Sync()
}
