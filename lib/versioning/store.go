// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package versioning

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/camunda/camunda-sub024/lib/resource"
)

// ErrNotFound is returned by Store lookups that match nothing.
var ErrNotFound = errors.New("versioning: not found")

// ID names one version history: the same resource id under the same
// tenant and kind. Histories are independent of each other; the same
// resource id in two tenants has two unrelated histories.
type ID struct {
	Kind       resource.Kind
	TenantID   string
	ResourceID string
}

func (id ID) String() string {
	return fmt.Sprintf("%v/%s/%s", id.Kind, id.TenantID, id.ResourceID)
}

// Entry is one accepted version of a resource.
type Entry struct {
	ID
	Version       int32
	VersionTag    string
	Key           int64
	ResourceName  string
	Checksum      []byte
	DeploymentKey int64
}

// EntryOf extracts the history entry described by a metadata or
// content record. The checksum is copied.
func EntryOf(r resource.Identity) Entry {
	return Entry{
		ID:            ID{Kind: r.Kind(), TenantID: r.TenantID(), ResourceID: r.ResourceID()},
		Version:       r.Version(),
		VersionTag:    r.VersionTag(),
		Key:           r.ResourceKey(),
		ResourceName:  r.ResourceName(),
		Checksum:      slices.Clone(r.Checksum()),
		DeploymentKey: r.DeploymentKey(),
	}
}

// Store persists version histories. Implementations must be safe for
// concurrent use.
type Store interface {
	// Latest returns the highest version in the history, which is not
	// necessarily the most recently written one.
	Latest(ctx context.Context, id ID) (Entry, error)

	ByVersion(ctx context.Context, id ID, version int32) (Entry, error)

	// ByVersionTag returns the highest version carrying tag. Untagged
	// versions are not indexed: an empty tag never matches.
	ByVersionTag(ctx context.Context, id ID, tag string) (Entry, error)

	// ByDeploymentKey returns the version created by the given
	// deployment.
	ByDeploymentKey(ctx context.Context, id ID, deploymentKey int64) (Entry, error)

	// VersionBefore returns the highest version strictly below
	// version.
	VersionBefore(ctx context.Context, id ID, version int32) (int32, error)

	// History returns every version in ascending version order.
	History(ctx context.Context, id ID) ([]Entry, error)

	// Put records entry, replacing any entry with the same ID and
	// version.
	Put(ctx context.Context, entry Entry) error

	// MaxKey returns the highest resource key recorded, or zero for
	// an empty store.
	MaxKey(ctx context.Context) (int64, error)
}

// MemoryStore is an in-process Store, used by tests and by callers
// that need no persistence.
type MemoryStore struct {
	mu        sync.RWMutex
	histories map[ID][]Entry // ascending by version
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{histories: make(map[ID][]Entry)}
}

func (s *MemoryStore) Latest(_ context.Context, id ID) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.histories[id]
	if len(history) == 0 {
		return Entry{}, fmt.Errorf("%w: %v", ErrNotFound, id)
	}
	return cloneEntry(history[len(history)-1]), nil
}

func (s *MemoryStore) ByVersion(_ context.Context, id ID, version int32) (Entry, error) {
	return s.find(id, func(e Entry) bool { return e.Version == version })
}

func (s *MemoryStore) ByVersionTag(_ context.Context, id ID, tag string) (Entry, error) {
	if tag == "" {
		return Entry{}, fmt.Errorf("%w: %v has no empty version tag", ErrNotFound, id)
	}
	return s.find(id, func(e Entry) bool { return e.VersionTag == tag })
}

func (s *MemoryStore) ByDeploymentKey(_ context.Context, id ID, deploymentKey int64) (Entry, error) {
	return s.find(id, func(e Entry) bool { return e.DeploymentKey == deploymentKey })
}

// find returns the highest version matching match.
func (s *MemoryStore) find(id ID, match func(Entry) bool) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.histories[id]
	for i := len(history) - 1; i >= 0; i-- {
		if match(history[i]) {
			return cloneEntry(history[i]), nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %v", ErrNotFound, id)
}

func (s *MemoryStore) VersionBefore(_ context.Context, id ID, version int32) (int32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.histories[id]
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Version < version {
			return history[i].Version, nil
		}
	}
	return 0, fmt.Errorf("%w: no version of %v before %d", ErrNotFound, id, version)
}

func (s *MemoryStore) History(_ context.Context, id ID) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := make([]Entry, len(s.histories[id]))
	for i, entry := range s.histories[id] {
		history[i] = cloneEntry(entry)
	}
	return history, nil
}

func (s *MemoryStore) Put(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry = cloneEntry(entry)
	history := s.histories[entry.ID]
	index, found := slices.BinarySearchFunc(history, entry.Version, func(e Entry, version int32) int {
		return int(e.Version) - int(version)
	})
	if found {
		history[index] = entry
	} else {
		history = slices.Insert(history, index, entry)
	}
	s.histories[entry.ID] = history
	return nil
}

func (s *MemoryStore) MaxKey(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var maxKey int64
	for _, history := range s.histories {
		for _, entry := range history {
			maxKey = max(maxKey, entry.Key)
		}
	}
	return maxKey, nil
}

func cloneEntry(entry Entry) Entry {
	entry.Checksum = slices.Clone(entry.Checksum)
	return entry
}
