// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"fmt"

	"github.com/camunda/camunda-sub024/lib/record"
)

// Metadata describes one versioned resource without its payload. Every
// kind has its own concrete type; Metadata is the view the
// distribution pipeline works through.
type Metadata interface {
	record.Record
	Identity

	SetResourceID(id string)
	SetVersion(version int32)
	SetVersionTag(tag string)
	SetResourceKey(key int64)
	SetResourceName(name string)
	SetChecksum(checksum []byte)
	SetTenantID(tenantID string)
	SetDeploymentKey(key int64)
	SetDuplicate(duplicate bool)

	MarshalJSON() ([]byte, error)
}

// ProcessMetadata describes a deployed BPMN process definition.
type ProcessMetadata struct {
	record.Object
	identityFields
	duplicateFlag
}

func NewProcessMetadata() *ProcessMetadata {
	m := &ProcessMetadata{identityFields: newIdentityFields(processNames), duplicateFlag: newDuplicateFlag()}
	m.Object = record.NewObject(identityArity+1, m.identityProperties(m.duplicate)...)
	return m
}

func (m *ProcessMetadata) Kind() Kind { return KindProcess }

// BpmnProcessID is the process id declared in the BPMN model.
func (m *ProcessMetadata) BpmnProcessID() string { return m.ResourceID() }

// DecisionMetadata describes one decision declared inside a decision
// requirements graph. Its checksum is the checksum of the enclosing
// DMN resource.
type DecisionMetadata struct {
	record.Object
	identityFields
	duplicateFlag
	decisionName            *record.StringProperty
	decisionRequirementsID  *record.StringProperty
	decisionRequirementsKey *record.LongProperty
}

func NewDecisionMetadata() *DecisionMetadata {
	m := &DecisionMetadata{
		identityFields:          newIdentityFields(decisionNames),
		duplicateFlag:           newDuplicateFlag(),
		decisionName:            record.NewStringProperty("decisionName").WithDefault(""),
		decisionRequirementsID:  record.NewStringProperty("decisionRequirementsId"),
		decisionRequirementsKey: record.NewLongProperty("decisionRequirementsKey"),
	}
	m.Object = record.NewObject(identityArity+4,
		m.identityProperties(m.decisionName, m.decisionRequirementsID, m.decisionRequirementsKey, m.duplicate)...)
	return m
}

func (m *DecisionMetadata) Kind() Kind { return KindDecision }

func (m *DecisionMetadata) DecisionName() string { return m.decisionName.Value() }
func (m *DecisionMetadata) SetDecisionName(name string) { m.decisionName.SetValue(name) }
func (m *DecisionMetadata) DecisionRequirementsID() string { return m.decisionRequirementsID.Value() }
func (m *DecisionMetadata) SetDecisionRequirementsID(id string) {
	m.decisionRequirementsID.SetValue(id)
}
func (m *DecisionMetadata) DecisionRequirementsKey() int64 { return m.decisionRequirementsKey.Value() }
func (m *DecisionMetadata) SetDecisionRequirementsKey(key int64) {
	m.decisionRequirementsKey.SetValue(key)
}

// DecisionRequirementsMetadata describes a deployed DMN decision
// requirements graph.
type DecisionRequirementsMetadata struct {
	record.Object
	identityFields
	duplicateFlag
	name      *record.StringProperty
	namespace *record.StringProperty
}

func NewDecisionRequirementsMetadata() *DecisionRequirementsMetadata {
	m := &DecisionRequirementsMetadata{
		identityFields: newIdentityFields(requirementsNames),
		duplicateFlag:  newDuplicateFlag(),
		name:           record.NewStringProperty("decisionRequirementsName").WithDefault(""),
		namespace:      record.NewStringProperty("namespace").WithDefault(""),
	}
	m.Object = record.NewObject(identityArity+3, m.identityProperties(m.name, m.namespace, m.duplicate)...)
	return m
}

func (m *DecisionRequirementsMetadata) Kind() Kind { return KindDecisionRequirements }

func (m *DecisionRequirementsMetadata) DecisionRequirementsName() string { return m.name.Value() }
func (m *DecisionRequirementsMetadata) SetDecisionRequirementsName(name string) {
	m.name.SetValue(name)
}
func (m *DecisionRequirementsMetadata) Namespace() string { return m.namespace.Value() }
func (m *DecisionRequirementsMetadata) SetNamespace(namespace string) {
	m.namespace.SetValue(namespace)
}

// FormMetadata describes a deployed user-task form.
type FormMetadata struct {
	record.Object
	identityFields
	duplicateFlag
}

func NewFormMetadata() *FormMetadata {
	m := &FormMetadata{identityFields: newIdentityFields(formNames), duplicateFlag: newDuplicateFlag()}
	m.Object = record.NewObject(identityArity+1, m.identityProperties(m.duplicate)...)
	return m
}

func (m *FormMetadata) Kind() Kind { return KindForm }

// RpaMetadata describes a deployed robotic-process-automation script.
type RpaMetadata struct {
	record.Object
	identityFields
	duplicateFlag
}

func NewRpaMetadata() *RpaMetadata {
	m := &RpaMetadata{identityFields: newIdentityFields(rpaNames), duplicateFlag: newDuplicateFlag()}
	m.Object = record.NewObject(identityArity+1, m.identityProperties(m.duplicate)...)
	return m
}

func (m *RpaMetadata) Kind() Kind { return KindRpa }

// ResourceMetadata describes any other deployed file.
type ResourceMetadata struct {
	record.Object
	identityFields
	duplicateFlag
}

func NewResourceMetadata() *ResourceMetadata {
	m := &ResourceMetadata{identityFields: newIdentityFields(genericNames), duplicateFlag: newDuplicateFlag()}
	m.Object = record.NewObject(identityArity+1, m.identityProperties(m.duplicate)...)
	return m
}

func (m *ResourceMetadata) Kind() Kind { return KindResource }

// NewMetadata returns an empty metadata record for kind.
func NewMetadata(kind Kind) (Metadata, error) {
	switch kind {
	case KindProcess:
		return NewProcessMetadata(), nil
	case KindDecision:
		return NewDecisionMetadata(), nil
	case KindDecisionRequirements:
		return NewDecisionRequirementsMetadata(), nil
	case KindForm:
		return NewFormMetadata(), nil
	case KindRpa:
		return NewRpaMetadata(), nil
	case KindResource:
		return NewResourceMetadata(), nil
	default:
		return nil, fmt.Errorf("no metadata record for %v", kind)
	}
}
