// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package distribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/camunda/camunda-sub024/lib/checksum"
	"github.com/camunda/camunda-sub024/lib/deployment"
	"github.com/camunda/camunda-sub024/lib/resource"
	"github.com/camunda/camunda-sub024/lib/versioning"
)

// Outcome is the terminal state of a submitted deployment.
type Outcome int

const (
	// Created means at least one resource became a new version. The
	// aggregate carries a fresh deployment key and must be
	// distributed.
	Created Outcome = iota

	// DuplicatesOnly means every resource matched an existing
	// version. Nothing was recorded and no deployment key was minted;
	// the caller acknowledges without distributing.
	DuplicatesOnly
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case DuplicatesOnly:
		return "duplicates-only"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Standalone is an RPA script or generic resource. These kinds are not
// nested in the aggregate and are persisted on their own.
type Standalone struct {
	Metadata resource.Metadata

	// Content is nil for a duplicate.
	Content resource.Content
}

// Result is what Submit hands back to the distribution layer.
type Result struct {
	RequestID string
	Outcome   Outcome

	// Deployment is the aggregate; Encoded is its wire form.
	Deployment *deployment.Record
	Encoded    []byte

	Standalone []Standalone
}

// SubmitterConfig holds the collaborators of a Submitter.
type SubmitterConfig struct {
	// Versioner decides new-version versus duplicate. Required.
	Versioner *versioning.Versioner

	// Keys mints deployment keys. Required; normally the same
	// generator the Versioner mints resource keys from.
	Keys versioning.KeySource

	Checksum checksum.Algorithm

	// Logger may be nil.
	Logger *slog.Logger
}

// Submitter turns raw submissions into a versioned, encoded deployment
// aggregate. It is the single logical writer of the version store:
// Submit calls are serialized.
type Submitter struct {
	mu        sync.Mutex
	versioner *versioning.Versioner
	keys      versioning.KeySource
	algorithm checksum.Algorithm
	logger    *slog.Logger
}

func NewSubmitter(cfg SubmitterConfig) (*Submitter, error) {
	if cfg.Versioner == nil {
		return nil, errors.New("distribution: Versioner is required")
	}
	if cfg.Keys == nil {
		return nil, errors.New("distribution: Keys is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Submitter{
		versioner: cfg.Versioner,
		keys:      cfg.Keys,
		algorithm: cfg.Checksum,
		logger:    logger,
	}, nil
}

// pending is one resolved metadata record awaiting the outcome.
type pending struct {
	meta    resource.Metadata
	payload []byte
}

// Submit validates, classifies and versions the submissions, then
// builds the aggregate. On Created the new versions are recorded in
// the version store under the minted deployment key before Submit
// returns.
func (s *Submitter) Submit(ctx context.Context, submissions []Submission) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	requestID := uuid.NewString()
	logger := s.logger.With("request_id", requestID)

	tenant, err := validateAll(submissions)
	if err != nil {
		return nil, err
	}

	aggregate := deployment.New()
	aggregate.SetTenantID(tenant)

	var resolved []pending
	var standalone []pending
	for _, submission := range submissions {
		kind := submission.Kind()
		digest := checksum.Sum(s.algorithm, submission.Resource)

		meta, err := s.resolve(ctx, aggregate, kind, submission, tenant, digest)
		if err != nil {
			return nil, err
		}
		entry := pending{meta: meta, payload: submission.Resource}
		if !kind.InAggregate() {
			standalone = append(standalone, entry)
			continue
		}
		raw := aggregate.Resources().Add()
		raw.SetName(submission.ResourceName)
		raw.SetContent(submission.Resource)
		resolved = append(resolved, entry)

		if kind == resource.KindDecisionRequirements {
			decisions, err := s.resolveDecisions(ctx, aggregate, submission, meta, digest)
			if err != nil {
				return nil, err
			}
			resolved = append(resolved, decisions...)
		}
	}

	result := &Result{RequestID: requestID, Deployment: aggregate}
	if aggregate.HasDuplicatesOnly() && allDuplicate(standalone) {
		result.Outcome = DuplicatesOnly
	} else {
		result.Outcome = Created
		deploymentKey := s.keys.Next()
		aggregate.SetDeploymentKey(deploymentKey)
		for _, entry := range standalone {
			entry.meta.SetDeploymentKey(deploymentKey)
		}
		if err := s.record(ctx, deploymentKey, append(resolved, standalone...)); err != nil {
			return nil, err
		}
	}

	for _, entry := range standalone {
		item := Standalone{Metadata: entry.meta}
		if !entry.meta.IsDuplicate() {
			content, err := resource.Wrap(entry.meta, entry.payload)
			if err != nil {
				return nil, fmt.Errorf("distribution: %w", err)
			}
			item.Content = content
		}
		result.Standalone = append(result.Standalone, item)
	}

	result.Encoded, err = aggregate.Marshal()
	if err != nil {
		return nil, fmt.Errorf("distribution: encoding deployment: %w", err)
	}

	logger.Info("deployment submitted",
		"tenant_id", tenant,
		"outcome", result.Outcome.String(),
		"deployment_key", aggregate.DeploymentKey(),
		"resources", len(submissions),
		"size", len(result.Encoded),
	)
	return result, nil
}

// resolve versions one submission and fills in its metadata record.
// In-aggregate kinds are added to the aggregate's metadata arrays.
func (s *Submitter) resolve(ctx context.Context, aggregate *deployment.Record, kind resource.Kind,
	submission Submission, tenant string, digest []byte) (resource.Metadata, error) {
	var meta resource.Metadata
	switch kind {
	case resource.KindProcess:
		meta = aggregate.ProcessesMetadata().Add()
	case resource.KindDecisionRequirements:
		drg := aggregate.DecisionRequirementsMetadata().Add()
		drg.SetDecisionRequirementsName(submission.DecisionRequirementsName)
		drg.SetNamespace(submission.Namespace)
		meta = drg
	case resource.KindForm:
		meta = aggregate.FormMetadata().Add()
	default:
		var err error
		if meta, err = resource.NewMetadata(kind); err != nil {
			return nil, fmt.Errorf("distribution: %w", err)
		}
	}
	meta.SetResourceID(submission.ResourceID)
	meta.SetResourceName(submission.ResourceName)
	meta.SetVersionTag(submission.VersionTag)
	meta.SetTenantID(tenant)
	meta.SetChecksum(digest)
	return meta, s.assign(ctx, meta)
}

// resolveDecisions versions the decisions of a DMN resource. They are
// compared with the DRG's checksum, so they follow its duplicate
// status.
func (s *Submitter) resolveDecisions(ctx context.Context, aggregate *deployment.Record,
	submission Submission, drg resource.Metadata, digest []byte) ([]pending, error) {
	var decisions []pending
	for _, declared := range submission.Decisions {
		decision := aggregate.DecisionsMetadata().Add()
		decision.SetResourceID(declared.DecisionID)
		decision.SetDecisionName(declared.DecisionName)
		decision.SetResourceName(submission.ResourceName)
		decision.SetVersionTag(submission.VersionTag)
		decision.SetTenantID(drg.TenantID())
		decision.SetChecksum(digest)
		decision.SetDecisionRequirementsID(drg.ResourceID())
		decision.SetDecisionRequirementsKey(drg.ResourceKey())
		if err := s.assign(ctx, decision); err != nil {
			return nil, err
		}
		decisions = append(decisions, pending{meta: decision})
	}
	return decisions, nil
}

func (s *Submitter) assign(ctx context.Context, meta resource.Metadata) error {
	assignment, err := s.versioner.Resolve(ctx, versioning.Candidate{
		ID: versioning.ID{
			Kind:       meta.Kind(),
			TenantID:   meta.TenantID(),
			ResourceID: meta.ResourceID(),
		},
		Checksum: meta.Checksum(),
	})
	if err != nil {
		return fmt.Errorf("distribution: %w", err)
	}
	meta.SetVersion(assignment.Version)
	meta.SetResourceKey(assignment.Key)
	meta.SetDuplicate(assignment.Duplicate)
	return nil
}

// record writes every new version under deploymentKey.
func (s *Submitter) record(ctx context.Context, deploymentKey int64, resolved []pending) error {
	var entries []versioning.Entry
	for _, entry := range resolved {
		if entry.meta.IsDuplicate() {
			continue
		}
		e := versioning.EntryOf(entry.meta)
		e.DeploymentKey = deploymentKey
		entries = append(entries, e)
	}
	if err := s.versioner.Record(ctx, entries...); err != nil {
		return fmt.Errorf("distribution: %w", err)
	}
	return nil
}

func allDuplicate(entries []pending) bool {
	for _, entry := range entries {
		if !entry.meta.IsDuplicate() {
			return false
		}
	}
	return true
}
