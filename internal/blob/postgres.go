package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const blobsSchema = `
CREATE TABLE IF NOT EXISTS blobs (
	namespace    TEXT NOT NULL,
	key          TEXT NOT NULL,
	data         BYTEA NOT NULL,
	content_type TEXT NOT NULL DEFAULT '',
	etag         TEXT NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (namespace, key)
)`

// PostgresStore implements Store on a single blobs table keyed by
// (namespace, key), with the ETag held in its own column so conditional
// writes are one UPDATE.
type PostgresStore struct {
	pool      *pgxpool.Pool
	namespace string
}

// NewPostgresStore creates a PostgresStore scoped to the given namespace.
func NewPostgresStore(pool *pgxpool.Pool, namespace string) *PostgresStore {
	return &PostgresStore{
		pool:      pool,
		namespace: namespace,
	}
}

// EnsureSchema creates the blobs table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, blobsSchema); err != nil {
		return fmt.Errorf("create blobs table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	var (
		data []byte
		etag string
	)

	query := `SELECT data, etag FROM blobs WHERE namespace = $1 AND key = $2`
	err := s.pool.QueryRow(ctx, query, s.namespace, key).Scan(&data, &etag)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("postgres get %q: %w", key, err)
	}

	return data, etag, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, data []byte, opts SetOptions) (string, error) {
	etag := uuid.NewString()

	if opts.IfMatch == "" {
		query := `
			INSERT INTO blobs (namespace, key, data, content_type, etag, updated_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (namespace, key) DO UPDATE
			SET data = EXCLUDED.data,
			    content_type = EXCLUDED.content_type,
			    etag = EXCLUDED.etag,
			    updated_at = now()`
		if _, err := s.pool.Exec(ctx, query, s.namespace, key, data, opts.ContentType, etag); err != nil {
			return "", fmt.Errorf("postgres set %q: %w", key, err)
		}
		return etag, nil
	}

	query := `
		UPDATE blobs
		SET data = $4, content_type = $5, etag = $6, updated_at = now()
		WHERE namespace = $1 AND key = $2 AND etag = $3`
	tag, err := s.pool.Exec(ctx, query, s.namespace, key, opts.IfMatch, data, opts.ContentType, etag)
	if err != nil {
		return "", fmt.Errorf("postgres conditional set %q: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return "", ErrPreconditionFailed
	}

	return etag, nil
}

func (s *PostgresStore) Metadata(ctx context.Context, key string) (Metadata, error) {
	var meta Metadata

	query := `SELECT etag, content_type FROM blobs WHERE namespace = $1 AND key = $2`
	err := s.pool.QueryRow(ctx, query, s.namespace, key).Scan(&meta.ETag, &meta.ContentType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Metadata{}, ErrNotFound
		}
		return Metadata{}, fmt.Errorf("postgres metadata %q: %w", key, err)
	}

	return meta, nil
}

var _ Store = (*PostgresStore)(nil)
