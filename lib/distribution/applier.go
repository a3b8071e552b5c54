// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package distribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/camunda/camunda-sub024/lib/deployment"
	"github.com/camunda/camunda-sub024/lib/resource"
	"github.com/camunda/camunda-sub024/lib/versioning"
)

// ContentStore persists content records. Implementations: the SQLite
// store in package statestore and the bucket store in package
// objectstore.
type ContentStore interface {
	PutContent(ctx context.Context, content resource.Content) error

	// GetContent returns the encoded content record, or an error
	// wrapping versioning.ErrNotFound.
	GetContent(ctx context.Context, kind resource.Kind, key int64) ([]byte, error)
}

// DeploymentLog keeps the metadata-only aggregate of every applied
// deployment. Optional.
type DeploymentLog interface {
	RecordDeployment(ctx context.Context, deploymentKey int64, tenantID string, encoded []byte) error
}

// ApplierConfig holds the collaborators of an Applier.
type ApplierConfig struct {
	// Versions is the node's version store. Required.
	Versions versioning.Store

	// Contents is where content records go. Required.
	Contents ContentStore

	// Deployments may be nil.
	Deployments DeploymentLog

	// Logger may be nil.
	Logger *slog.Logger
}

// Applier is the receiving side of a deployment: it decodes an
// aggregate taken off the log and persists the resources it
// introduced.
type Applier struct {
	versions    versioning.Store
	contents    ContentStore
	deployments DeploymentLog
	logger      *slog.Logger
}

func NewApplier(cfg ApplierConfig) (*Applier, error) {
	if cfg.Versions == nil {
		return nil, errors.New("distribution: Versions is required")
	}
	if cfg.Contents == nil {
		return nil, errors.New("distribution: Contents is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Applier{
		versions:    cfg.Versions,
		contents:    cfg.Contents,
		deployments: cfg.Deployments,
		logger:      logger,
	}, nil
}

// ApplyResult reports what Apply did.
type ApplyResult struct {
	TenantID      string
	DeploymentKey int64

	// DuplicatesOnly means the aggregate introduced nothing and Apply
	// persisted nothing.
	DuplicatesOnly bool

	// Persisted lists the versions written, in aggregate order.
	Persisted []versioning.Entry

	// MetadataOnly is the aggregate re-encoded without its raw
	// resources. Nil when DuplicatesOnly.
	MetadataOnly []byte
}

// Apply decodes an encoded aggregate and persists every new process,
// decision requirements graph and form as a content record, and every
// new version (decisions included) in the version store. encoded must
// not be modified while Apply runs.
func (a *Applier) Apply(ctx context.Context, encoded []byte) (*ApplyResult, error) {
	aggregate := deployment.New()
	if err := aggregate.Wrap(encoded); err != nil {
		return nil, fmt.Errorf("distribution: decoding deployment: %w", err)
	}
	result := &ApplyResult{TenantID: aggregate.TenantID(), DeploymentKey: aggregate.DeploymentKey()}
	logger := a.logger.With("deployment_key", result.DeploymentKey, "tenant_id", result.TenantID)

	if aggregate.HasDuplicatesOnly() {
		result.DuplicatesOnly = true
		logger.Debug("deployment has duplicates only, nothing to apply")
		return result, nil
	}
	if err := aggregate.CheckConsistency(); err != nil {
		return nil, err
	}

	for meta := range aggregate.ProcessesMetadata().All() {
		if err := a.persistContent(ctx, aggregate, meta, result); err != nil {
			return nil, err
		}
	}
	for meta := range aggregate.DecisionRequirementsMetadata().All() {
		if err := a.persistContent(ctx, aggregate, meta, result); err != nil {
			return nil, err
		}
	}
	for meta := range aggregate.DecisionsMetadata().All() {
		if meta.IsDuplicate() {
			continue
		}
		entry := versioning.EntryOf(meta)
		entry.DeploymentKey = aggregate.DeploymentKey()
		if err := a.putEntry(ctx, entry, result); err != nil {
			return nil, err
		}
	}
	for meta := range aggregate.FormMetadata().All() {
		if err := a.persistContent(ctx, aggregate, meta, result); err != nil {
			return nil, err
		}
	}

	aggregate.ResetResources()
	metadataOnly, err := aggregate.Marshal()
	if err != nil {
		return nil, fmt.Errorf("distribution: encoding metadata-only deployment: %w", err)
	}
	result.MetadataOnly = metadataOnly
	if a.deployments != nil {
		if err := a.deployments.RecordDeployment(ctx, result.DeploymentKey, result.TenantID, metadataOnly); err != nil {
			return nil, fmt.Errorf("distribution: %w", err)
		}
	}

	logger.Info("deployment applied",
		"persisted", len(result.Persisted),
		"size", len(encoded),
		"metadata_size", len(metadataOnly),
	)
	return result, nil
}

// persistContent pairs a non-duplicate metadata entry with its raw
// resource and stores both.
func (a *Applier) persistContent(ctx context.Context, aggregate *deployment.Record, meta resource.Metadata, result *ApplyResult) error {
	if meta.IsDuplicate() {
		return nil
	}
	raw, ok := aggregate.ResourceByName(meta.ResourceName())
	if !ok {
		return fmt.Errorf("%w: no resource named %q", deployment.ErrInconsistent, meta.ResourceName())
	}
	content, err := resource.Wrap(meta, raw.Content())
	if err != nil {
		return fmt.Errorf("distribution: %w", err)
	}
	content.SetDeploymentKey(aggregate.DeploymentKey())
	if err := a.contents.PutContent(ctx, content); err != nil {
		return fmt.Errorf("distribution: %w", err)
	}
	return a.putEntry(ctx, versioning.EntryOf(content), result)
}

func (a *Applier) putEntry(ctx context.Context, entry versioning.Entry, result *ApplyResult) error {
	if err := a.versions.Put(ctx, entry); err != nil {
		return fmt.Errorf("distribution: %w", err)
	}
	result.Persisted = append(result.Persisted, entry)
	return nil
}

// StoreStandalone persists the RPA and generic resources of a
// submission result. Duplicates are skipped.
func (a *Applier) StoreStandalone(ctx context.Context, items []Standalone) ([]versioning.Entry, error) {
	var stored []versioning.Entry
	for _, item := range items {
		if item.Content == nil {
			continue
		}
		if err := a.contents.PutContent(ctx, item.Content); err != nil {
			return stored, fmt.Errorf("distribution: %w", err)
		}
		entry := versioning.EntryOf(item.Content)
		if err := a.versions.Put(ctx, entry); err != nil {
			return stored, fmt.Errorf("distribution: %w", err)
		}
		stored = append(stored, entry)
	}
	a.logger.Debug("stored standalone resources", "count", len(stored))
	return stored, nil
}

// LoadContent fetches and decodes a stored content record.
func LoadContent(ctx context.Context, store ContentStore, kind resource.Kind, key int64) (resource.Content, error) {
	encoded, err := store.GetContent(ctx, kind, key)
	if err != nil {
		return nil, err
	}
	content, err := resource.NewContent(kind)
	if err != nil {
		return nil, err
	}
	if err := content.Wrap(encoded); err != nil {
		return nil, fmt.Errorf("distribution: decoding %v %d: %w", kind, key, err)
	}
	return content, nil
}
