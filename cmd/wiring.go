package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/okian/skillmatch/internal/adapters/modelstore"
	"github.com/okian/skillmatch/internal/adapters/repository"
	service "github.com/okian/skillmatch/internal/app"
	"github.com/okian/skillmatch/internal/config"
	"github.com/okian/skillmatch/internal/domain/retrain"
	"github.com/okian/skillmatch/internal/domain/snapshot"
	"github.com/okian/skillmatch/pkg/logger"
)

// resources holds the external collaborators of a service and how to
// release them.
type resources struct {
	source  snapshot.Source
	store   retrain.ModelStore
	closers []func()
}

func (r *resources) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func openResources(ctx context.Context, cfg *config.Config, log logger.Logger) (*resources, error) {
	res := &resources{}

	switch cfg.Source {
	case config.SourcePostgres:
		db, err := openPostgres(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		res.source = db
		res.closers = append(res.closers, db.Close)
	default:
		res.source = repository.NewFileSource(cfg.DatasetPath)
		log.Info(ctx, "reading freelancers from file", logger.String("path", cfg.DatasetPath))
	}

	switch cfg.ModelStore {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := modelstore.NewRedisStore(client, cfg.RedisKey)
		if err := store.Ping(ctx); err != nil {
			_ = client.Close()
			res.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		res.store = store
		res.closers = append(res.closers, func() { _ = client.Close() })
		log.Info(ctx, "persisting model in redis", logger.String("addr", cfg.RedisAddr), logger.String("key", cfg.RedisKey))
	default:
		res.store = modelstore.NewFileStore(cfg.ModelPath)
		log.Info(ctx, "persisting model on disk", logger.String("path", cfg.ModelPath))
	}
	return res, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, log logger.Logger) (*repository.Postgres, error) {
	db, err := repository.NewPostgres(ctx, cfg.DatabaseURL, repository.WithLogger(log.Named("postgres")))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info(ctx, "database migrations applied")
	}
	return db, nil
}

// newService maps configuration onto service options.
func newService(cfg *config.Config, res *resources, log logger.Logger, retrainOnStart bool) *service.Service {
	return service.New(
		service.WithLogger(log),
		service.WithSource(res.source),
		service.WithModelStore(res.store),
		service.WithWeights(cfg.Weights()),
		service.WithMaxRating(cfg.MaxRating),
		service.WithExperienceCap(cfg.ExperienceCap),
		service.WithNeutralRating(cfg.NeutralRating),
		service.WithMinSimilarity(cfg.MinSimilarity),
		service.WithTopN(cfg.DefaultTopN, cfg.MaxTopN),
		service.WithSourceTimeout(cfg.SourceTimeout()),
		service.WithRetrainTimeout(cfg.RetrainTimeout()),
		service.WithRetrainOnStart(retrainOnStart),
	)
}
