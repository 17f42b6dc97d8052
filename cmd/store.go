package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/po-matcher/internal/intake"
	"github.com/sells-group/po-matcher/internal/pipeline"
	"github.com/sells-group/po-matcher/internal/store"
	"github.com/sells-group/po-matcher/pkg/extraction"
	"github.com/sells-group/po-matcher/pkg/matching"
)

const defaultSQLitePath = "po-matcher.db"

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = defaultSQLitePath
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore opens the configured store and makes sure the schema exists.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

func initStorage(ctx context.Context) (intake.Storage, error) {
	switch cfg.Uploads.Driver {
	case "", "local":
		return intake.NewLocalStorage(cfg.Uploads.Dir), nil
	case "s3":
		return intake.NewS3Storage(ctx, cfg.Uploads.Bucket, cfg.Uploads.Prefix, cfg.Uploads.Region)
	default:
		return nil, eris.Errorf("unsupported uploads driver: %s", cfg.Uploads.Driver)
	}
}

func initPipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	storage, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}

	ext := extraction.NewClient(cfg.Extraction.URL,
		extraction.WithTimeout(time.Duration(cfg.Extraction.TimeoutSecs)*time.Second),
		extraction.WithRateLimit(cfg.Extraction.RatePerSec),
	)
	mat := matching.NewClient(cfg.Matching.URL,
		matching.WithTimeout(time.Duration(cfg.Matching.TimeoutSecs)*time.Second),
		matching.WithRateLimit(cfg.Matching.RatePerSec),
	)

	return pipeline.New(intake.NewReceiver(storage), ext, mat), nil
}
