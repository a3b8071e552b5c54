// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/camunda/camunda-sub024/lib/record"
)

// ErrNoContentRecord is returned by Wrap and NewContent for kinds that
// have no standalone content record (decisions live inside their
// decision requirements graph).
var ErrNoContentRecord = errors.New("resource: kind has no content record")

// Content is a metadata record together with the payload it
// describes. Content records are what gets persisted; they never
// carry the duplicate flag.
type Content interface {
	record.Record
	Identity

	// Payload returns the resource bytes. For a decoded record the
	// slice aliases the decode buffer.
	Payload() []byte

	SetDeploymentKey(key int64)
	MarshalJSON() ([]byte, error)
}

// contentRecord is the shape shared by every binary-payload content
// record.
type contentRecord struct {
	record.Object
	identityFields
	resource *record.BinaryProperty
}

func newContentRecord(names wireNames, extra ...record.Property) contentRecord {
	c := contentRecord{identityFields: newIdentityFields(names), resource: record.NewBinaryProperty("resource")}
	c.Object = record.NewObject(identityArity+1+len(extra), c.identityProperties(append(extra, c.resource)...)...)
	return c
}

// IsDuplicate is always false: a duplicate is never persisted.
func (c *contentRecord) IsDuplicate() bool { return false }

func (c *contentRecord) Resource() []byte { return c.resource.Value() }

func (c *contentRecord) Payload() []byte { return c.resource.Value() }

type ProcessRecord struct{ contentRecord }

func NewProcessRecord() *ProcessRecord {
	return &ProcessRecord{newContentRecord(processNames)}
}

func (r *ProcessRecord) Kind() Kind { return KindProcess }

// WrapProcess builds the content record for meta. Identity values are
// copied out of meta; resource is retained as given.
func WrapProcess(meta *ProcessMetadata, resource []byte) *ProcessRecord {
	r := NewProcessRecord()
	r.copyFrom(meta)
	r.resource.SetValue(resource)
	return r
}

type DecisionRequirementsRecord struct {
	contentRecord
	name      *record.StringProperty
	namespace *record.StringProperty
}

func NewDecisionRequirementsRecord() *DecisionRequirementsRecord {
	name := record.NewStringProperty("decisionRequirementsName").WithDefault("")
	namespace := record.NewStringProperty("namespace").WithDefault("")
	return &DecisionRequirementsRecord{
		contentRecord: newContentRecord(requirementsNames, name, namespace),
		name:          name,
		namespace:     namespace,
	}
}

func (r *DecisionRequirementsRecord) Kind() Kind { return KindDecisionRequirements }

func (r *DecisionRequirementsRecord) DecisionRequirementsName() string { return r.name.Value() }

func (r *DecisionRequirementsRecord) Namespace() string { return r.namespace.Value() }

func WrapDecisionRequirements(meta *DecisionRequirementsMetadata, resource []byte) *DecisionRequirementsRecord {
	r := NewDecisionRequirementsRecord()
	r.copyFrom(meta)
	r.name.SetValue(meta.DecisionRequirementsName())
	r.namespace.SetValue(meta.Namespace())
	r.resource.SetValue(resource)
	return r
}

type FormRecord struct{ contentRecord }

func NewFormRecord() *FormRecord {
	return &FormRecord{newContentRecord(formNames)}
}

func (r *FormRecord) Kind() Kind { return KindForm }

func WrapForm(meta *FormMetadata, resource []byte) *FormRecord {
	r := NewFormRecord()
	r.copyFrom(meta)
	r.resource.SetValue(resource)
	return r
}

type ResourceRecord struct{ contentRecord }

func NewResourceRecord() *ResourceRecord {
	return &ResourceRecord{newContentRecord(genericNames)}
}

func (r *ResourceRecord) Kind() Kind { return KindResource }

func WrapResource(meta *ResourceMetadata, resource []byte) *ResourceRecord {
	r := NewResourceRecord()
	r.copyFrom(meta)
	r.resource.SetValue(resource)
	return r
}

// RpaRecord carries an RPA script. Unlike the other content records
// its payload is UTF-8 text.
type RpaRecord struct {
	record.Object
	identityFields
	script *record.StringProperty
}

func NewRpaRecord() *RpaRecord {
	r := &RpaRecord{identityFields: newIdentityFields(rpaNames), script: record.NewStringProperty("resource")}
	r.Object = record.NewObject(identityArity+1, r.identityProperties(r.script)...)
	return r
}

func (r *RpaRecord) Kind() Kind { return KindRpa }

func (r *RpaRecord) IsDuplicate() bool { return false }

func (r *RpaRecord) Script() string { return r.script.Value() }

func (r *RpaRecord) Payload() []byte { return r.script.Bytes() }

func WrapRpa(meta *RpaMetadata, script string) *RpaRecord {
	r := NewRpaRecord()
	r.copyFrom(meta)
	r.script.SetValue(script)
	return r
}

// Wrap builds the content record matching meta's concrete kind.
func Wrap(meta Metadata, payload []byte) (Content, error) {
	switch meta := meta.(type) {
	case *ProcessMetadata:
		return WrapProcess(meta, payload), nil
	case *DecisionRequirementsMetadata:
		return WrapDecisionRequirements(meta, payload), nil
	case *FormMetadata:
		return WrapForm(meta, payload), nil
	case *RpaMetadata:
		if !utf8.Valid(payload) {
			return nil, fmt.Errorf("rpa resource %q is not valid UTF-8", meta.ResourceName())
		}
		return WrapRpa(meta, string(payload)), nil
	case *ResourceMetadata:
		return WrapResource(meta, payload), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrNoContentRecord, meta.Kind())
	}
}

// NewContent returns an empty content record for kind, ready for
// Wrap on a stored encoding.
func NewContent(kind Kind) (Content, error) {
	switch kind {
	case KindProcess:
		return NewProcessRecord(), nil
	case KindDecisionRequirements:
		return NewDecisionRequirementsRecord(), nil
	case KindForm:
		return NewFormRecord(), nil
	case KindRpa:
		return NewRpaRecord(), nil
	case KindResource:
		return NewResourceRecord(), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrNoContentRecord, kind)
	}
}
