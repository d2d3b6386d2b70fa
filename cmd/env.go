package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/evidence-cli/internal/fetch"
	"github.com/sells-group/evidence-cli/internal/pipeline"
	"github.com/sells-group/evidence-cli/internal/store"
	"github.com/sells-group/evidence-cli/internal/urlnorm"
	"github.com/sells-group/evidence-cli/pkg/serper"
)

// env bundles the long-lived dependencies a command needs.
type env struct {
	Store       store.Store
	Coordinator *pipeline.Coordinator
}

func (e *env) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}

// initStore opens the configured store backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres", "":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initEnv validates config and wires the store, clients, and pipeline.
func initEnv(ctx context.Context) (*env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}

	norm := urlnorm.New()
	if cfg.Run.ExclusionsFile != "" {
		norm, err = urlnorm.NewFromFile(cfg.Run.ExclusionsFile)
		if err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "load exclusions")
		}
	}

	p := pipeline.New(
		serper.NewClient(cfg.Serper.Key),
		fetch.New(),
		st,
		norm,
		cfg.Serper.RateLimit,
	)

	return &env{
		Store:       st,
		Coordinator: pipeline.NewCoordinator(p, cfg.Run.BatchSize, cfg.Run.Concurrency),
	}, nil
}
