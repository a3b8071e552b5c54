// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package statestore

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/camunda/camunda-sub024/lib/compress"
	"github.com/camunda/camunda-sub024/lib/resource"
	"github.com/camunda/camunda-sub024/lib/versioning"
)

// PutContent encodes content and stores it under (kind, key),
// replacing any previous record with the same key. The encoded record
// is compressed according to the store's Compression setting.
func (s *Store) PutContent(ctx context.Context, content resource.Content) error {
	encoded, err := content.Marshal()
	if err != nil {
		return fmt.Errorf("state store: encoding %v %d: %w", content.Kind(), content.ResourceKey(), err)
	}

	var stored []byte
	var tag compress.Tag
	if s.compression.Auto {
		stored, tag, err = compress.Auto(encoded, content.Kind().ContentType())
	} else {
		stored, tag, err = compress.With(encoded, s.compression.Tag)
	}
	if err != nil {
		return fmt.Errorf("state store: compressing %v %d: %w", content.Kind(), content.ResourceKey(), err)
	}

	err = s.pool.Write(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `INSERT OR REPLACE INTO resource_contents
			(kind, resource_key, tenant_id, compression, uncompressed_size, record, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{
					content.Kind().String(),
					content.ResourceKey(),
					content.TenantID(),
					int64(tag),
					len(encoded),
					stored,
					s.clock.Now().UnixNano(),
				},
			})
	})
	if err != nil {
		return fmt.Errorf("state store: storing %v %d: %w", content.Kind(), content.ResourceKey(), err)
	}

	s.logger.Debug("stored content record",
		"kind", content.Kind().String(),
		"resource_key", content.ResourceKey(),
		"tenant_id", content.TenantID(),
		"compression", tag.String(),
		"size", len(encoded),
		"stored_size", len(stored),
	)
	return nil
}

// GetContent returns the encoded content record stored under (kind,
// key), decompressed. The result can be decoded with the record type
// resource.NewContent(kind) returns.
func (s *Store) GetContent(ctx context.Context, kind resource.Kind, key int64) ([]byte, error) {
	var (
		found bool
		tag   compress.Tag
		size  int
		blob  []byte
	)
	err := s.pool.Read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT compression, uncompressed_size, record
			FROM resource_contents WHERE kind = ? AND resource_key = ?`,
			&sqlitex.ExecOptions{
				Args: []any{kind.String(), key},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					found = true
					tag = compress.Tag(stmt.ColumnInt64(0))
					size = int(stmt.ColumnInt64(1))
					blob = columnBlob(stmt, 2)
					return nil
				},
			})
	})
	if err != nil {
		return nil, fmt.Errorf("state store: reading %v %d: %w", kind, key, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %v content %d", versioning.ErrNotFound, kind, key)
	}

	encoded, err := compress.Decompress(blob, tag, size)
	if err != nil {
		return nil, fmt.Errorf("state store: decompressing %v %d: %w", kind, key, err)
	}
	return encoded, nil
}

// RecordDeployment stores an applied, metadata-only deployment
// aggregate under its deployment key.
func (s *Store) RecordDeployment(ctx context.Context, deploymentKey int64, tenantID string, encoded []byte) error {
	err := s.pool.Write(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `INSERT OR REPLACE INTO deployments
			(deployment_key, tenant_id, record, created_at) VALUES (?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{deploymentKey, tenantID, encoded, s.clock.Now().UnixNano()},
			})
	})
	if err != nil {
		return fmt.Errorf("state store: recording deployment %d: %w", deploymentKey, err)
	}
	return nil
}

// Deployment returns the aggregate stored by RecordDeployment.
func (s *Store) Deployment(ctx context.Context, deploymentKey int64) ([]byte, error) {
	var encoded []byte
	found := false
	err := s.pool.Read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT record FROM deployments WHERE deployment_key = ?`,
			&sqlitex.ExecOptions{
				Args: []any{deploymentKey},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					found = true
					encoded = columnBlob(stmt, 0)
					return nil
				},
			})
	})
	if err != nil {
		return nil, fmt.Errorf("state store: reading deployment %d: %w", deploymentKey, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: deployment %d", versioning.ErrNotFound, deploymentKey)
	}
	return encoded, nil
}
