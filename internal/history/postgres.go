package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/rustinb303/ai-pr-watcher/internal/domain"
)

// PostgresStore mirrors snapshots into Postgres so the dashboard can
// query history independently of the CSV file. Like the CSV store it is
// insert-only.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresStore connects to Postgres and ensures the snapshot table
// exists.
func NewPostgresStore(ctx context.Context, connString string, logger zerolog.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	s := &PostgresStore{pool: pool, logger: logger}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info().Msg("connected to Postgres")
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			collected_at TIMESTAMPTZ NOT NULL,
			position INTEGER NOT NULL,
			service TEXT NOT NULL,
			total_prs INTEGER,
			merged_prs INTEGER,
			commits INTEGER,
			PRIMARY KEY (collected_at, service)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Append inserts one row per service stat. Rows are never updated.
func (s *PostgresStore) Append(ctx context.Context, snap domain.Snapshot) error {
	for i, stat := range snap.Stats {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO snapshots (collected_at, position, service, total_prs, merged_prs, commits)
			VALUES ($1, $2, $3, $4, $5, $6);
		`, snap.Timestamp, i, stat.Service, stat.TotalPRs, stat.MergedPRs, stat.Commits)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot row for %s: %w", stat.Service, err)
		}
	}
	s.logger.Debug().Time("collected_at", snap.Timestamp).Int("services", len(snap.Stats)).Msg("mirrored snapshot to Postgres")
	return nil
}

// Load reads the full history ordered by collection time, grouping the
// per-service rows back into snapshots.
func (s *PostgresStore) Load(ctx context.Context) ([]domain.Snapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT collected_at, service, total_prs, merged_prs, commits
		FROM snapshots
		ORDER BY collected_at, position;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.Snapshot
	for rows.Next() {
		var (
			collectedAt time.Time
			stat        domain.ServiceStat
		)
		if err := rows.Scan(&collectedAt, &stat.Service, &stat.TotalPRs, &stat.MergedPRs, &stat.Commits); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		collectedAt = collectedAt.UTC()
		if n := len(snapshots); n > 0 && snapshots[n-1].Timestamp.Equal(collectedAt) {
			snapshots[n-1].Stats = append(snapshots[n-1].Stats, stat)
		} else {
			snapshots = append(snapshots, domain.Snapshot{Timestamp: collectedAt, Stats: []domain.ServiceStat{stat}})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot rows: %w", err)
	}
	return snapshots, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
