// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"bytes"

	"github.com/camunda/camunda-sub024/lib/record"
)

// Identity is the read view shared by every metadata and content
// record: which resource this is, which version, and where it came
// from.
type Identity interface {
	Kind() Kind
	ResourceID() string
	Version() int32
	VersionTag() string
	ResourceKey() int64
	ResourceName() string
	Checksum() []byte
	TenantID() string
	DeploymentKey() int64
	IsDuplicate() bool
}

// wireNames are the per-kind property names for the three identity
// fields whose names differ between kinds. The remaining fields use
// the same name everywhere.
type wireNames struct {
	id      string
	version string
	key     string
}

var (
	processNames      = wireNames{id: "bpmnProcessId", version: "version", key: "processDefinitionKey"}
	decisionNames     = wireNames{id: "decisionId", version: "version", key: "decisionKey"}
	requirementsNames = wireNames{id: "decisionRequirementsId", version: "decisionRequirementsVersion", key: "decisionRequirementsKey"}
	formNames         = wireNames{id: "formId", version: "version", key: "formKey"}
	rpaNames          = wireNames{id: "rpaId", version: "version", key: "rpaKey"}
	genericNames      = wireNames{id: "resourceId", version: "version", key: "resourceKey"}
)

// identityFields is embedded by every metadata and content record.
type identityFields struct {
	id            *record.StringProperty
	version       *record.IntegerProperty
	versionTag    *record.StringProperty
	key           *record.LongProperty
	resourceName  *record.StringProperty
	checksum      *record.BinaryProperty
	tenantID      *record.StringProperty
	deploymentKey *record.LongProperty
}

// identityArity is the number of properties identityFields declares.
const identityArity = 8

func newIdentityFields(names wireNames) identityFields {
	return identityFields{
		id:            record.NewStringProperty(names.id),
		version:       record.NewIntegerProperty(names.version),
		versionTag:    record.NewStringProperty("versionTag").WithDefault(""),
		key:           record.NewLongProperty(names.key),
		resourceName:  record.NewStringProperty("resourceName"),
		checksum:      record.NewBinaryProperty("checksum").WithDefault(nil),
		tenantID:      record.NewStringProperty("tenantId").WithDefault(DefaultTenantID),
		deploymentKey: record.NewLongProperty("deploymentKey").WithDefault(-1),
	}
}

func (f *identityFields) identityProperties(extra ...record.Property) []record.Property {
	return append([]record.Property{
		f.id, f.version, f.versionTag, f.key,
		f.resourceName, f.checksum, f.tenantID, f.deploymentKey,
	}, extra...)
}

func (f *identityFields) ResourceID() string { return f.id.Value() }
func (f *identityFields) Version() int32 { return f.version.Value() }
func (f *identityFields) VersionTag() string { return f.versionTag.Value() }
func (f *identityFields) ResourceKey() int64 { return f.key.Value() }
func (f *identityFields) ResourceName() string { return f.resourceName.Value() }
func (f *identityFields) TenantID() string { return f.tenantID.Value() }
func (f *identityFields) DeploymentKey() int64 { return f.deploymentKey.Value() }

// Checksum returns the digest bytes. For a decoded record the slice
// aliases the decode buffer.
func (f *identityFields) Checksum() []byte { return f.checksum.Value() }

// HasDeploymentKey reports whether the record carries the key of the
// deployment that created it. Metadata inside a deployment aggregate
// leaves it unset; the aggregate carries it instead.
func (f *identityFields) HasDeploymentKey() bool { return f.deploymentKey.Value() >= 0 }

func (f *identityFields) SetResourceID(id string) { f.id.SetValue(id) }
func (f *identityFields) SetVersion(version int32) { f.version.SetValue(version) }
func (f *identityFields) SetVersionTag(tag string) { f.versionTag.SetValue(tag) }
func (f *identityFields) SetResourceKey(key int64) { f.key.SetValue(key) }
func (f *identityFields) SetResourceName(name string) { f.resourceName.SetValue(name) }
func (f *identityFields) SetChecksum(checksum []byte) { f.checksum.SetValue(checksum) }
func (f *identityFields) SetTenantID(tenantID string) { f.tenantID.SetValue(tenantID) }
func (f *identityFields) SetDeploymentKey(key int64) { f.deploymentKey.SetValue(key) }

// copyFrom copies every identity value out of src. Strings become Go
// strings and the checksum is cloned, so nothing aliases src's buffer.
func (f *identityFields) copyFrom(src Identity) {
	f.SetResourceID(src.ResourceID())
	f.SetVersion(src.Version())
	f.SetVersionTag(src.VersionTag())
	f.SetResourceKey(src.ResourceKey())
	f.SetResourceName(src.ResourceName())
	f.SetChecksum(bytes.Clone(src.Checksum()))
	f.SetTenantID(src.TenantID())
	f.SetDeploymentKey(src.DeploymentKey())
}

// duplicateFlag marks a metadata record as re-submitting an existing
// version. Content records never carry it.
type duplicateFlag struct {
	duplicate *record.BooleanProperty
}

func newDuplicateFlag() duplicateFlag {
	return duplicateFlag{duplicate: record.NewBooleanProperty("isDuplicate").WithDefault(false)}
}

func (d *duplicateFlag) IsDuplicate() bool { return d.duplicate.Value() }
func (d *duplicateFlag) SetDuplicate(duplicate bool) { d.duplicate.SetValue(duplicate) }
