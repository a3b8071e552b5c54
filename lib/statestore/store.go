// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package statestore

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/camunda/camunda-sub024/lib/clock"
	"github.com/camunda/camunda-sub024/lib/compress"
	"github.com/camunda/camunda-sub024/lib/keygen"
	"github.com/camunda/camunda-sub024/lib/resource"
	"github.com/camunda/camunda-sub024/lib/sqlitepool"
	"github.com/camunda/camunda-sub024/lib/versioning"
)

const schema = `
CREATE TABLE IF NOT EXISTS resource_versions (
	kind           TEXT    NOT NULL,
	tenant_id      TEXT    NOT NULL,
	resource_id    TEXT    NOT NULL,
	version        INTEGER NOT NULL,
	version_tag    TEXT    NOT NULL DEFAULT '',
	resource_key   INTEGER NOT NULL,
	resource_name  TEXT    NOT NULL,
	checksum       BLOB,
	deployment_key INTEGER NOT NULL DEFAULT -1,
	created_at     INTEGER NOT NULL,
	PRIMARY KEY (kind, tenant_id, resource_id, version)
);
CREATE INDEX IF NOT EXISTS idx_resource_versions_key ON resource_versions(resource_key);
CREATE INDEX IF NOT EXISTS idx_resource_versions_tag ON resource_versions(kind, tenant_id, resource_id, version_tag);
CREATE INDEX IF NOT EXISTS idx_resource_versions_deployment ON resource_versions(deployment_key);

CREATE TABLE IF NOT EXISTS resource_contents (
	kind              TEXT    NOT NULL,
	resource_key      INTEGER NOT NULL,
	tenant_id         TEXT    NOT NULL,
	compression       INTEGER NOT NULL,
	uncompressed_size INTEGER NOT NULL,
	record            BLOB    NOT NULL,
	created_at        INTEGER NOT NULL,
	PRIMARY KEY (kind, resource_key)
);

CREATE TABLE IF NOT EXISTS deployments (
	deployment_key INTEGER PRIMARY KEY,
	tenant_id      TEXT    NOT NULL,
	record         BLOB    NOT NULL,
	created_at     INTEGER NOT NULL
);
`

// entryColumns is the SELECT list scanEntry expects, in order.
const entryColumns = `kind, tenant_id, resource_id, version, version_tag,
	resource_key, resource_name, checksum, deployment_key`

// Store persists version histories, content records and applied
// deployments in one SQLite database. It implements versioning.Store
// and the content store used by the distribution applier.
type Store struct {
	pool        *sqlitepool.Pool
	clock       clock.Clock
	logger      *slog.Logger
	compression Compression
}

// Compression selects how content records are compressed at rest.
type Compression struct {
	// Auto picks a tag per record from the payload's media type.
	Auto bool
	// Tag is used when Auto is false.
	Tag compress.Tag
}

// ParseCompression accepts "auto" or a compress tag name.
func ParseCompression(name string) (Compression, error) {
	if name == "" || name == "auto" {
		return Compression{Auto: true}, nil
	}
	tag, err := compress.ParseTag(name)
	if err != nil {
		return Compression{}, err
	}
	return Compression{Tag: tag}, nil
}

// Config holds the parameters for opening a Store.
type Config struct {
	// Path is the database file. Its directory must exist.
	Path string

	// PoolSize defaults to 4.
	PoolSize int

	Compression Compression

	// Clock stamps created_at. Required.
	Clock clock.Clock

	// Logger is required.
	Logger *slog.Logger
}

// Open creates or opens the database and applies the schema.
func Open(cfg Config) (*Store, error) {
	if cfg.Clock == nil {
		return nil, fmt.Errorf("state store: Clock is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("state store: Logger is required")
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     cfg.Path,
		PoolSize: poolSize,
		Schema:   schema,
		Logger:   cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("state store: %w", err)
	}

	store := &Store{pool: pool, clock: cfg.Clock, logger: cfg.Logger, compression: cfg.Compression}

	// Surface schema errors now rather than on the first query.
	if err := pool.Read(context.Background(), func(*sqlite.Conn) error { return nil }); err != nil {
		pool.Close()
		return nil, fmt.Errorf("state store: %w", err)
	}
	return store, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

func (s *Store) Latest(ctx context.Context, id versioning.ID) (versioning.Entry, error) {
	return s.queryOne(ctx, id, `SELECT `+entryColumns+` FROM resource_versions
		WHERE kind = ? AND tenant_id = ? AND resource_id = ?
		ORDER BY version DESC LIMIT 1`)
}

func (s *Store) ByVersion(ctx context.Context, id versioning.ID, version int32) (versioning.Entry, error) {
	return s.queryOne(ctx, id, `SELECT `+entryColumns+` FROM resource_versions
		WHERE kind = ? AND tenant_id = ? AND resource_id = ? AND version = ?`, version)
}

func (s *Store) ByVersionTag(ctx context.Context, id versioning.ID, tag string) (versioning.Entry, error) {
	if tag == "" {
		return versioning.Entry{}, fmt.Errorf("%w: %v has no empty version tag", versioning.ErrNotFound, id)
	}
	return s.queryOne(ctx, id, `SELECT `+entryColumns+` FROM resource_versions
		WHERE kind = ? AND tenant_id = ? AND resource_id = ? AND version_tag = ?
		ORDER BY version DESC LIMIT 1`, tag)
}

func (s *Store) ByDeploymentKey(ctx context.Context, id versioning.ID, deploymentKey int64) (versioning.Entry, error) {
	return s.queryOne(ctx, id, `SELECT `+entryColumns+` FROM resource_versions
		WHERE kind = ? AND tenant_id = ? AND resource_id = ? AND deployment_key = ?
		ORDER BY version DESC LIMIT 1`, deploymentKey)
}

func (s *Store) VersionBefore(ctx context.Context, id versioning.ID, version int32) (int32, error) {
	entry, err := s.queryOne(ctx, id, `SELECT `+entryColumns+` FROM resource_versions
		WHERE kind = ? AND tenant_id = ? AND resource_id = ? AND version < ?
		ORDER BY version DESC LIMIT 1`, version)
	if err != nil {
		return 0, err
	}
	return entry.Version, nil
}

func (s *Store) History(ctx context.Context, id versioning.ID) ([]versioning.Entry, error) {
	entries, err := s.query(ctx, `SELECT `+entryColumns+` FROM resource_versions
		WHERE kind = ? AND tenant_id = ? AND resource_id = ?
		ORDER BY version ASC`, idArgs(id)...)
	if err != nil {
		return nil, fmt.Errorf("state store: history of %v: %w", id, err)
	}
	return entries, nil
}

// Put upserts entry keyed by (kind, tenant, resource id, version). A
// replaced row keeps its original created_at.
func (s *Store) Put(ctx context.Context, entry versioning.Entry) error {
	err := s.pool.Write(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `INSERT INTO resource_versions
			(kind, tenant_id, resource_id, version, version_tag, resource_key,
			 resource_name, checksum, deployment_key, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (kind, tenant_id, resource_id, version) DO UPDATE SET
				version_tag    = excluded.version_tag,
				resource_key   = excluded.resource_key,
				resource_name  = excluded.resource_name,
				checksum       = excluded.checksum,
				deployment_key = excluded.deployment_key`,
			&sqlitex.ExecOptions{
				Args: []any{
					entry.Kind.String(),
					entry.TenantID,
					entry.ResourceID,
					entry.Version,
					entry.VersionTag,
					entry.Key,
					entry.ResourceName,
					entry.Checksum,
					entry.DeploymentKey,
					s.clock.Now().UnixNano(),
				},
			})
	})
	if err != nil {
		return fmt.Errorf("state store: put %v version %d: %w", entry.ID, entry.Version, err)
	}
	return nil
}

func (s *Store) MaxKey(ctx context.Context) (int64, error) {
	var maxKey int64
	err := s.pool.Read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT coalesce(max(resource_key), 0) FROM resource_versions`,
			&sqlitex.ExecOptions{
				ResultFunc: func(stmt *sqlite.Stmt) error {
					maxKey = stmt.ColumnInt64(0)
					return nil
				},
			})
	})
	if err != nil {
		return 0, fmt.Errorf("state store: max key: %w", err)
	}
	return maxKey, nil
}

// MaxDeploymentKey returns the highest applied deployment key, or
// zero. Deployment keys and resource keys come from one generator, so
// a restarted generator must resume above both.
func (s *Store) MaxDeploymentKey(ctx context.Context) (int64, error) {
	var maxKey int64
	err := s.pool.Read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT coalesce(max(deployment_key), 0) FROM deployments`,
			&sqlitex.ExecOptions{
				ResultFunc: func(stmt *sqlite.Stmt) error {
					maxKey = stmt.ColumnInt64(0)
					return nil
				},
			})
	})
	if err != nil {
		return 0, fmt.Errorf("state store: max deployment key: %w", err)
	}
	return maxKey, nil
}

func (s *Store) queryOne(ctx context.Context, id versioning.ID, query string, extra ...any) (versioning.Entry, error) {
	entries, err := s.query(ctx, query, append(idArgs(id), extra...)...)
	if err != nil {
		return versioning.Entry{}, fmt.Errorf("state store: %v: %w", id, err)
	}
	if len(entries) == 0 {
		return versioning.Entry{}, fmt.Errorf("%w: %v", versioning.ErrNotFound, id)
	}
	return entries[0], nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]versioning.Entry, error) {
	var entries []versioning.Entry
	err := s.pool.Read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				entry, err := scanEntry(stmt)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			},
		})
	})
	return entries, err
}

func idArgs(id versioning.ID) []any {
	return []any{id.Kind.String(), id.TenantID, id.ResourceID}
}

func scanEntry(stmt *sqlite.Stmt) (versioning.Entry, error) {
	kind, err := resource.ParseKind(stmt.ColumnText(0))
	if err != nil {
		return versioning.Entry{}, err
	}
	return versioning.Entry{
		ID: versioning.ID{
			Kind:       kind,
			TenantID:   stmt.ColumnText(1),
			ResourceID: stmt.ColumnText(2),
		},
		Version:       int32(stmt.ColumnInt64(3)),
		VersionTag:    stmt.ColumnText(4),
		Key:           stmt.ColumnInt64(5),
		ResourceName:  stmt.ColumnText(6),
		Checksum:      columnBlob(stmt, 7),
		DeploymentKey: stmt.ColumnInt64(8),
	}, nil
}

func columnBlob(stmt *sqlite.Stmt, column int) []byte {
	length := stmt.ColumnLen(column)
	if length == 0 {
		return nil
	}
	blob := make([]byte, length)
	stmt.ColumnBytes(column, blob)
	return blob
}

// LastKey returns the highest resource or deployment key minted by
// partitionID, or zero. Deployment keys are read from the version
// rows as well as the deployment log, since deployments that were
// never applied locally leave no log entry. Keys applied from other partitions are
// ignored, which makes the result a valid seed for
// keygen.NewGenerator.
func (s *Store) LastKey(ctx context.Context, partitionID int32) (int64, error) {
	low := keygen.Encode(partitionID, 0)
	high := keygen.Encode(partitionID, -1)
	var lastKey int64
	err := s.pool.Read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT max(
				(SELECT coalesce(max(resource_key), 0) FROM resource_versions WHERE resource_key BETWEEN ?1 AND ?2),
				(SELECT coalesce(max(deployment_key), 0) FROM resource_versions WHERE deployment_key BETWEEN ?1 AND ?2),
				(SELECT coalesce(max(deployment_key), 0) FROM deployments WHERE deployment_key BETWEEN ?1 AND ?2))`,
			&sqlitex.ExecOptions{
				Args: []any{low, high},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					lastKey = stmt.ColumnInt64(0)
					return nil
				},
			})
	})
	if err != nil {
		return 0, fmt.Errorf("state store: last key of partition %d: %w", partitionID, err)
	}
	return lastKey, nil
}
