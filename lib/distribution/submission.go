// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package distribution

import (
	"errors"
	"fmt"

	"github.com/camunda/camunda-sub024/lib/resource"
)

var (
	// ErrInvalidSubmission reports a submission missing its name, id
	// or bytes, or declaring decisions on a non-DMN resource.
	ErrInvalidSubmission = errors.New("distribution: invalid submission")

	// ErrEmptyDeployment is returned by Submit for zero submissions.
	ErrEmptyDeployment = errors.New("distribution: deployment has no resources")

	// ErrDuplicateResourceID reports two resources of the same kind
	// sharing an id within one deployment.
	ErrDuplicateResourceID = errors.New("distribution: duplicate resource id in deployment")

	// ErrMixedTenants reports submissions for more than one tenant in
	// one deployment.
	ErrMixedTenants = errors.New("distribution: deployment spans several tenants")
)

// Submission is one resource offered for deployment, as produced by
// the model parsers upstream.
type Submission struct {
	// TenantID may be empty, meaning resource.DefaultTenantID.
	TenantID string

	// ResourceID is the business id: the BPMN process id, the DRG id
	// of a DMN file, the form id, and so on.
	ResourceID string

	// ResourceName is the artifact file name. Its suffix decides the
	// kind.
	ResourceName string

	Resource   []byte
	VersionTag string

	// Decisions, DecisionRequirementsName and Namespace describe the
	// contents of a DMN resource and are ignored for other kinds.
	Decisions                []DecisionDeclaration
	DecisionRequirementsName string
	Namespace                string
}

// DecisionDeclaration is one decision declared inside a DMN resource.
type DecisionDeclaration struct {
	DecisionID   string
	DecisionName string
}

func (s Submission) Kind() resource.Kind { return resource.KindOf(s.ResourceName) }

func (s Submission) tenant() string {
	if s.TenantID == "" {
		return resource.DefaultTenantID
	}
	return s.TenantID
}

func (s Submission) validate() error {
	switch {
	case s.ResourceName == "":
		return fmt.Errorf("%w: resource name is empty", ErrInvalidSubmission)
	case s.ResourceID == "":
		return fmt.Errorf("%w: %s has no resource id", ErrInvalidSubmission, s.ResourceName)
	case len(s.Resource) == 0:
		return fmt.Errorf("%w: %s is empty", ErrInvalidSubmission, s.ResourceName)
	case len(s.Decisions) > 0 && s.Kind() != resource.KindDecisionRequirements:
		return fmt.Errorf("%w: %s declares decisions but is not a DMN resource", ErrInvalidSubmission, s.ResourceName)
	}
	for _, decision := range s.Decisions {
		if decision.DecisionID == "" {
			return fmt.Errorf("%w: %s declares a decision without an id", ErrInvalidSubmission, s.ResourceName)
		}
	}
	return nil
}

// validateAll checks each submission and the deployment-wide rules,
// returning the deployment's tenant.
func validateAll(submissions []Submission) (string, error) {
	if len(submissions) == 0 {
		return "", ErrEmptyDeployment
	}
	type kindID struct {
		kind resource.Kind
		id   string
	}
	seen := make(map[kindID]string)
	claim := func(kind resource.Kind, id, resourceName string) error {
		key := kindID{kind, id}
		if previous, ok := seen[key]; ok {
			return fmt.Errorf("%w: %v %q in both %s and %s", ErrDuplicateResourceID, kind, id, previous, resourceName)
		}
		seen[key] = resourceName
		return nil
	}

	tenant := submissions[0].tenant()
	for _, s := range submissions {
		if err := s.validate(); err != nil {
			return "", err
		}
		if s.tenant() != tenant {
			return "", fmt.Errorf("%w: %q and %q", ErrMixedTenants, tenant, s.tenant())
		}
		if err := claim(s.Kind(), s.ResourceID, s.ResourceName); err != nil {
			return "", err
		}
		for _, decision := range s.Decisions {
			if err := claim(resource.KindDecision, decision.DecisionID, s.ResourceName); err != nil {
				return "", err
			}
		}
	}
	return tenant, nil
}
