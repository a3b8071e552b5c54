// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package deployment

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/camunda/camunda-sub024/lib/record"
	"github.com/camunda/camunda-sub024/lib/resource"
)

// ErrInconsistent is returned by CheckConsistency when the raw
// resources and the metadata arrays disagree.
var ErrInconsistent = errors.New("deployment: resources and metadata disagree")

// Resource is one raw file as submitted: its name and bytes.
type Resource struct {
	record.Object
	name    *record.StringProperty
	content *record.BinaryProperty
}

func NewResource() *Resource {
	r := &Resource{
		name:    record.NewStringProperty("resourceName"),
		content: record.NewBinaryProperty("resource").WithDefault(nil),
	}
	r.Object = record.NewObject(2, r.name, r.content)
	return r
}

func (r *Resource) Name() string { return r.name.Value() }

func (r *Resource) SetName(name string) { r.name.SetValue(name) }

// Content returns the resource bytes. For a decoded aggregate the slice
// aliases the decode buffer.
func (r *Resource) Content() []byte { return r.content.Value() }

// SetContent assigns the bytes without copying.
func (r *Resource) SetContent(content []byte) { r.content.SetValue(content) }

// Record is the deployment aggregate: everything one deployment
// command submitted, plus the metadata derived for each resource
// during processing.
type Record struct {
	record.Object
	resources     *record.ArrayProperty[*Resource]
	processes     *record.ArrayProperty[*resource.ProcessMetadata]
	decisions     *record.ArrayProperty[*resource.DecisionMetadata]
	requirements  *record.ArrayProperty[*resource.DecisionRequirementsMetadata]
	forms         *record.ArrayProperty[*resource.FormMetadata]
	tenantID      *record.StringProperty
	deploymentKey *record.LongProperty
}

func New() *Record {
	d := &Record{
		resources:     record.NewArrayProperty("resources", NewResource),
		processes:     record.NewArrayProperty("processesMetadata", resource.NewProcessMetadata),
		decisions:     record.NewArrayProperty("decisionsMetadata", resource.NewDecisionMetadata),
		requirements:  record.NewArrayProperty("decisionRequirementsMetadata", resource.NewDecisionRequirementsMetadata),
		forms:         record.NewArrayProperty("formMetadata", resource.NewFormMetadata),
		tenantID:      record.NewStringProperty("tenantId").WithDefault(resource.DefaultTenantID),
		deploymentKey: record.NewLongProperty("deploymentKey").WithDefault(-1),
	}
	d.Object = record.NewObject(7,
		d.resources, d.processes, d.decisions, d.requirements, d.forms, d.tenantID, d.deploymentKey)
	return d
}

// Resources is the live handle to the raw resource array. Use Add on
// it to build a deployment.
func (d *Record) Resources() *record.ArrayProperty[*Resource] { return d.resources }

func (d *Record) ProcessesMetadata() *record.ArrayProperty[*resource.ProcessMetadata] {
	return d.processes
}

func (d *Record) DecisionsMetadata() *record.ArrayProperty[*resource.DecisionMetadata] {
	return d.decisions
}

func (d *Record) DecisionRequirementsMetadata() *record.ArrayProperty[*resource.DecisionRequirementsMetadata] {
	return d.requirements
}

func (d *Record) FormMetadata() *record.ArrayProperty[*resource.FormMetadata] { return d.forms }

func (d *Record) TenantID() string { return d.tenantID.Value() }

func (d *Record) SetTenantID(tenantID string) { d.tenantID.SetValue(tenantID) }

// DeploymentKey is -1 until a deployment key has been assigned.
func (d *Record) DeploymentKey() int64 { return d.deploymentKey.Value() }

func (d *Record) SetDeploymentKey(key int64) { d.deploymentKey.SetValue(key) }

// GetResources returns deep copies of the raw resources. The copies
// stay valid after the aggregate's buffer is reused.
func (d *Record) GetResources() ([]*Resource, error) {
	return cloneAll(d.resources.All(), NewResource)
}

func (d *Record) GetProcessesMetadata() ([]*resource.ProcessMetadata, error) {
	return cloneAll(d.processes.All(), resource.NewProcessMetadata)
}

func (d *Record) GetDecisionsMetadata() ([]*resource.DecisionMetadata, error) {
	return cloneAll(d.decisions.All(), resource.NewDecisionMetadata)
}

func (d *Record) GetDecisionRequirementsMetadata() ([]*resource.DecisionRequirementsMetadata, error) {
	return cloneAll(d.requirements.All(), resource.NewDecisionRequirementsMetadata)
}

func (d *Record) GetFormMetadata() ([]*resource.FormMetadata, error) {
	return cloneAll(d.forms.All(), resource.NewFormMetadata)
}

func cloneAll[T record.Record](elements iter.Seq[T], newRecord func() T) ([]T, error) {
	var clones []T
	for element := range elements {
		clone, err := record.Clone(element, newRecord)
		if err != nil {
			return nil, err
		}
		clones = append(clones, clone)
	}
	return clones, nil
}

// HasBpmnResources reports whether any raw resource is a BPMN model.
func (d *Record) HasBpmnResources() bool {
	return d.anyResourceNamed(".bpmn", ".xml")
}

// HasDmnResources reports whether any raw resource is a DMN model.
func (d *Record) HasDmnResources() bool {
	return d.anyResourceNamed(".dmn")
}

// HasForms reports whether any raw resource is a form.
func (d *Record) HasForms() bool {
	return d.anyResourceNamed(".form")
}

func (d *Record) anyResourceNamed(suffixes ...string) bool {
	for r := range d.resources.All() {
		for _, suffix := range suffixes {
			if strings.HasSuffix(r.Name(), suffix) {
				return true
			}
		}
	}
	return false
}

// HasDuplicatesOnly reports whether every process, decision
// requirements and form entry is flagged duplicate. Decisions are not
// consulted: they are derived from their requirements graph. An
// aggregate with no such entries is vacuously duplicates-only.
func (d *Record) HasDuplicatesOnly() bool {
	return allDuplicates(d.processes.All()) &&
		allDuplicates(d.requirements.All()) &&
		allDuplicates(d.forms.All())
}

func allDuplicates[T interface{ IsDuplicate() bool }](elements iter.Seq[T]) bool {
	for element := range elements {
		if !element.IsDuplicate() {
			return false
		}
	}
	return true
}

// ResetResources empties the raw resource array. Metadata and the
// tenant are kept.
func (d *Record) ResetResources() {
	d.resources.Reset()
}

// ResourceByName returns the raw resource submitted under name.
func (d *Record) ResourceByName(name string) (*Resource, bool) {
	for r := range d.resources.All() {
		if r.Name() == name {
			return r, true
		}
	}
	return nil, false
}

// CheckConsistency verifies that every in-aggregate metadata entry
// names a raw resource of the matching kind, and that every raw
// resource of an in-aggregate kind has metadata. Decisions are
// checked against the resource of their requirements graph. It is
// meaningful only before ResetResources.
func (d *Record) CheckConsistency() error {
	counts := make(map[resource.Kind]int)
	names := make(map[string]resource.Kind)
	for r := range d.resources.All() {
		kind := resource.KindOf(r.Name())
		if !kind.InAggregate() {
			continue
		}
		counts[kind]++
		names[r.Name()] = kind
	}

	check := func(kind resource.Kind, count int, resourceNames iter.Seq[string]) error {
		if count != counts[kind] {
			return fmt.Errorf("%w: %d %v resources but %d metadata entries",
				ErrInconsistent, counts[kind], kind, count)
		}
		for name := range resourceNames {
			if found, ok := names[name]; !ok || found != kind {
				return fmt.Errorf("%w: %v metadata names unknown resource %q", ErrInconsistent, kind, name)
			}
		}
		return nil
	}

	if err := check(resource.KindProcess, d.processes.Len(), resourceNamesOf(d.processes.All())); err != nil {
		return err
	}
	if err := check(resource.KindDecisionRequirements, d.requirements.Len(), resourceNamesOf(d.requirements.All())); err != nil {
		return err
	}
	if err := check(resource.KindForm, d.forms.Len(), resourceNamesOf(d.forms.All())); err != nil {
		return err
	}
	for decision := range d.decisions.All() {
		if found, ok := names[decision.ResourceName()]; !ok || found != resource.KindDecisionRequirements {
			return fmt.Errorf("%w: decision %q names unknown resource %q",
				ErrInconsistent, decision.ResourceID(), decision.ResourceName())
		}
	}
	return nil
}

func resourceNamesOf[T interface{ ResourceName() string }](elements iter.Seq[T]) iter.Seq[string] {
	return func(yield func(string) bool) {
		for element := range elements {
			if !yield(element.ResourceName()) {
				return
			}
		}
	}
}
