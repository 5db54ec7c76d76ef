// Package repository provides the freelancer data sources: Postgres for
// production and a YAML dataset for local runs.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // migrate driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/skillmatch/internal/domain/snapshot"
	"github.com/okian/skillmatch/migrations"
	"github.com/okian/skillmatch/pkg/logger"
)

var _ snapshot.ConsistentSource = (*Postgres)(nil)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Review is a single star rating left for a freelancer.
type Review struct {
	FreelancerID string  `yaml:"freelancer"`
	Stars        float64 `yaml:"stars"`
}

// Postgres reads freelancers and reviews from a PostgreSQL database.
type Postgres struct {
	Pool    *pgxpool.Pool
	builder sq.StatementBuilderType
	logger  logger.Logger
}

// NewPostgres connects to the database and verifies the connection.
func NewPostgres(ctx context.Context, connString string, opts ...Option) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Postgres{
		Pool:    pool,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger:  logger.Nop(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// RunMigrations applies every embedded migration.
func (p *Postgres) RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}

// Ping checks the database connection.
func (p *Postgres) Ping(ctx context.Context) error {
	if p.Pool == nil {
		return ErrNotConnected
	}
	return p.Pool.Ping(ctx)
}

func (p *Postgres) freelancersQuery() (string, []any, error) {
	return p.builder.
		Select("id::text", "COALESCE(username, '')", "COALESCE(skills, '{}')", "COALESCE(experience, 0)").
		From("freelancers").
		OrderBy("id").
		ToSql()
}

func (p *Postgres) ratingsQuery() (string, []any, error) {
	return p.builder.
		Select("freelancer::text", "AVG(stars)::float8", "COUNT(stars)").
		From("freelancer_reviews").
		Where(sq.NotEq{"stars": nil}).
		GroupBy("freelancer").
		OrderBy("freelancer").
		ToSql()
}

// FetchFreelancers returns every freelancer base record.
func (p *Postgres) FetchFreelancers(ctx context.Context) ([]snapshot.RawFreelancer, error) {
	if p.Pool == nil {
		return nil, ErrNotConnected
	}
	return p.freelancers(ctx, p.Pool)
}

// FetchRatings returns average stars and review count per freelancer.
func (p *Postgres) FetchRatings(ctx context.Context) ([]snapshot.RatingAggregate, error) {
	if p.Pool == nil {
		return nil, ErrNotConnected
	}
	return p.ratings(ctx, p.Pool)
}

// FetchSnapshot reads freelancers and ratings inside one read-only
// repeatable-read transaction, so reviews written in between are not joined
// against an older freelancer list.
func (p *Postgres) FetchSnapshot(ctx context.Context) ([]snapshot.RawFreelancer, []snapshot.RatingAggregate, error) {
	const op = "repository.postgres.fetch_snapshot"
	if p.Pool == nil {
		return nil, nil, ErrNotConnected
	}

	tx, err := p.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // read-only, nothing to keep

	raw, err := p.freelancers(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	ratings, err := p.ratings(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	return raw, ratings, nil
}

func (p *Postgres) freelancers(ctx context.Context, q querier) ([]snapshot.RawFreelancer, error) {
	const op = "repository.postgres.fetch_freelancers"
	start := time.Now()

	query, args, err := p.freelancersQuery()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (snapshot.RawFreelancer, error) {
		var f snapshot.RawFreelancer
		err := row.Scan(&f.ID, &f.Name, &f.Skills, &f.Experience)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p.logger.Debug(ctx, "fetched freelancers",
		logger.Int("count", len(out)),
		logger.Duration("took", time.Since(start)),
	)
	return out, nil
}

func (p *Postgres) ratings(ctx context.Context, q querier) ([]snapshot.RatingAggregate, error) {
	const op = "repository.postgres.fetch_ratings"

	query, args, err := p.ratingsQuery()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (snapshot.RatingAggregate, error) {
		var r snapshot.RatingAggregate
		err := row.Scan(&r.FreelancerID, &r.Average, &r.Count)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Import upserts freelancers and appends reviews in a single transaction.
func (p *Postgres) Import(ctx context.Context, freelancers []snapshot.RawFreelancer, reviews []Review) error {
	const op = "repository.postgres.import"
	if p.Pool == nil {
		return ErrNotConnected
	}

	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if len(freelancers) > 0 {
		ins := p.builder.Insert("freelancers").Columns("id", "username", "skills", "experience")
		// One upsert statement cannot touch a row twice; first entry wins.
		seen := make(map[string]struct{}, len(freelancers))
		for _, f := range freelancers {
			if _, dup := seen[f.ID]; dup {
				continue
			}
			seen[f.ID] = struct{}{}
			skills := f.Skills
			if skills == nil {
				skills = []string{}
			}
			ins = ins.Values(f.ID, f.Name, skills, f.Experience)
		}
		ins = ins.Suffix("ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, skills = EXCLUDED.skills, experience = EXCLUDED.experience")

		query, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("%s: build freelancers: %w", op, err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("%s: freelancers: %w", op, err)
		}
	}

	if len(reviews) > 0 {
		ins := p.builder.Insert("freelancer_reviews").Columns("freelancer", "stars")
		for _, r := range reviews {
			ins = ins.Values(r.FreelancerID, r.Stars)
		}
		query, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("%s: build reviews: %w", op, err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("%s: reviews: %w", op, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	p.logger.Info(ctx, "dataset imported",
		logger.Int("freelancers", len(freelancers)),
		logger.Int("reviews", len(reviews)),
	)
	return nil
}
