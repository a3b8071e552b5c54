// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"fmt"
	"strings"
)

// DefaultTenantID is the tenant assigned to resources deployed
// without an explicit tenant.
const DefaultTenantID = "<default>"

// Kind identifies what a deployed resource is, which determines its
// metadata record and the identifier namespace it is versioned in.
type Kind int

const (
	KindProcess Kind = iota
	KindDecision
	KindDecisionRequirements
	KindForm
	KindRpa
	KindResource
)

var kindNames = [...]string{
	KindProcess:              "process",
	KindDecision:             "decision",
	KindDecisionRequirements: "decision-requirements",
	KindForm:                 "form",
	KindRpa:                  "rpa",
	KindResource:             "resource",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, error) {
	for kind, kindName := range kindNames {
		if kindName == name {
			return Kind(kind), nil
		}
	}
	return 0, fmt.Errorf("unknown resource kind %q", name)
}

// KindOf classifies a submitted resource by the suffix of its name.
// Decisions are never submitted directly; they are declared inside a
// decision requirements (.dmn) resource.
func KindOf(resourceName string) Kind {
	switch {
	case strings.HasSuffix(resourceName, ".bpmn"), strings.HasSuffix(resourceName, ".xml"):
		return KindProcess
	case strings.HasSuffix(resourceName, ".dmn"):
		return KindDecisionRequirements
	case strings.HasSuffix(resourceName, ".form"):
		return KindForm
	case strings.HasSuffix(resourceName, ".rpa"):
		return KindRpa
	default:
		return KindResource
	}
}

// InAggregate reports whether metadata of this kind travels inside the
// deployment aggregate. RPA scripts and generic resources are
// versioned alongside it but stored on their own.
func (k Kind) InAggregate() bool {
	switch k {
	case KindProcess, KindDecision, KindDecisionRequirements, KindForm:
		return true
	default:
		return false
	}
}

// ContentType is the media type of a payload of this kind, used to
// pick a compression strategy when the payload is stored.
func (k Kind) ContentType() string {
	switch k {
	case KindProcess, KindDecisionRequirements:
		return "application/xml"
	case KindForm:
		return "application/json"
	case KindRpa:
		return "text/plain"
	default:
		return ""
	}
}
