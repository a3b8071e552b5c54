// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package versioning

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/camunda/camunda-sub024/lib/keygen"
	"github.com/camunda/camunda-sub024/lib/resource"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestVersioner(t *testing.T, policy Policy) (*Versioner, *MemoryStore) {
	t.Helper()
	keys, err := keygen.NewGenerator(1, 0)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	store := NewMemoryStore()
	return New(store, keys, policy, discardLogger()), store
}

var orderID = ID{Kind: resource.KindProcess, TenantID: resource.DefaultTenantID, ResourceID: "order"}

// deploy resolves a candidate and records it when it is new, the way
// the submitter does.
func deploy(t *testing.T, v *Versioner, id ID, checksum string) Assignment {
	t.Helper()
	ctx := context.Background()
	assignment, err := v.Resolve(ctx, Candidate{ID: id, Checksum: []byte(checksum)})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !assignment.Duplicate {
		err := v.Record(ctx, Entry{ID: id, Version: assignment.Version, Key: assignment.Key, Checksum: []byte(checksum)})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	return assignment
}

func TestFirstDeploymentIsVersionOne(t *testing.T) {
	v, _ := newTestVersioner(t, LatestOnly)
	a := deploy(t, v, orderID, "aaa")
	if a.Version != 1 || a.Duplicate || keygen.PartitionOf(a.Key) != 1 {
		t.Errorf("first assignment = %+v", a)
	}
}

func TestRedeployIsIdempotent(t *testing.T) {
	v, store := newTestVersioner(t, LatestOnly)
	first := deploy(t, v, orderID, "aaa")
	second := deploy(t, v, orderID, "aaa")

	if !second.Duplicate {
		t.Fatal("identical redeploy was not flagged duplicate")
	}
	if second.Version != first.Version || second.Key != first.Key {
		t.Errorf("duplicate assignment %+v differs from original %+v", second, first)
	}
	history, err := store.History(context.Background(), orderID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history has %d entries after idempotent redeploy, want 1", len(history))
	}
}

func TestChangedContentBumpsVersion(t *testing.T) {
	v, _ := newTestVersioner(t, LatestOnly)
	first := deploy(t, v, orderID, "aaa")
	second := deploy(t, v, orderID, "bbb")
	if second.Duplicate || second.Version != 2 {
		t.Errorf("changed content assignment = %+v, want version 2", second)
	}
	if second.Key == first.Key {
		t.Error("new version reused the previous key")
	}
}

func TestLatestOnlyRedeployOfOlderVersionIsNew(t *testing.T) {
	v, _ := newTestVersioner(t, LatestOnly)
	deploy(t, v, orderID, "aaa")
	deploy(t, v, orderID, "bbb")
	third := deploy(t, v, orderID, "aaa")
	if third.Duplicate || third.Version != 3 {
		t.Errorf("rollback redeploy under LatestOnly = %+v, want new version 3", third)
	}
}

func TestAnyVersionRedeployOfOlderVersionIsDuplicate(t *testing.T) {
	v, _ := newTestVersioner(t, AnyVersion)
	first := deploy(t, v, orderID, "aaa")
	deploy(t, v, orderID, "bbb")
	third := deploy(t, v, orderID, "aaa")
	if !third.Duplicate || third.Version != 1 || third.Key != first.Key {
		t.Errorf("rollback redeploy under AnyVersion = %+v, want duplicate of %+v", third, first)
	}
}

func TestTenantsHaveIndependentHistories(t *testing.T) {
	v, _ := newTestVersioner(t, LatestOnly)
	acme := ID{Kind: resource.KindProcess, TenantID: "acme", ResourceID: "order"}
	globex := ID{Kind: resource.KindProcess, TenantID: "globex", ResourceID: "order"}

	deploy(t, v, acme, "aaa")
	deploy(t, v, acme, "bbb")
	got := deploy(t, v, globex, "bbb")
	if got.Duplicate || got.Version != 1 {
		t.Errorf("first deploy in second tenant = %+v, want new version 1", got)
	}
}

func TestKindsHaveIndependentHistories(t *testing.T) {
	v, _ := newTestVersioner(t, LatestOnly)
	form := ID{Kind: resource.KindForm, TenantID: resource.DefaultTenantID, ResourceID: "order"}
	deploy(t, v, orderID, "aaa")
	if got := deploy(t, v, form, "aaa"); got.Duplicate || got.Version != 1 {
		t.Errorf("form sharing a process id = %+v, want new version 1", got)
	}
}

func TestEmptyChecksumIsNeverDuplicate(t *testing.T) {
	v, _ := newTestVersioner(t, LatestOnly)
	deploy(t, v, orderID, "")
	if got := deploy(t, v, orderID, ""); got.Duplicate {
		t.Errorf("empty checksum flagged duplicate: %+v", got)
	}
}

type failingStore struct{ MemoryStore }

func (*failingStore) Latest(context.Context, ID) (Entry, error) {
	return Entry{}, errors.New("disk on fire")
}

func TestResolvePropagatesStoreErrors(t *testing.T) {
	keys, _ := keygen.NewGenerator(1, 0)
	v := New(&failingStore{}, keys, LatestOnly, discardLogger())
	if _, err := v.Resolve(context.Background(), Candidate{ID: orderID}); err == nil {
		t.Error("Resolve should fail when the store fails")
	}
}

func TestEmptyVersionTagNeverMatches(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, entry := range []Entry{
		{ID: orderID, Version: 1, Key: 10},
		{ID: orderID, Version: 2, VersionTag: "v2", Key: 20},
	} {
		if err := store.Put(ctx, entry); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if entry, err := store.ByVersionTag(ctx, orderID, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("ByVersionTag(\"\") = %+v, %v; want ErrNotFound", entry, err)
	}
}

func TestMemoryStoreLookups(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, entry := range []Entry{
		{ID: orderID, Version: 2, VersionTag: "v2", Key: 20, DeploymentKey: 200},
		{ID: orderID, Version: 1, VersionTag: "v1", Key: 10, DeploymentKey: 100},
		{ID: orderID, Version: 4, VersionTag: "v2", Key: 40, DeploymentKey: 400},
	} {
		if err := store.Put(ctx, entry); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	latest, err := store.Latest(ctx, orderID)
	if err != nil || latest.Version != 4 {
		t.Errorf("Latest = %+v, %v; want version 4", latest, err)
	}
	byTag, err := store.ByVersionTag(ctx, orderID, "v2")
	if err != nil || byTag.Version != 4 {
		t.Errorf("ByVersionTag(v2) = %+v, %v; want highest tagged version 4", byTag, err)
	}
	byDeployment, err := store.ByDeploymentKey(ctx, orderID, 200)
	if err != nil || byDeployment.Version != 2 {
		t.Errorf("ByDeploymentKey(200) = %+v, %v; want version 2", byDeployment, err)
	}
	before, err := store.VersionBefore(ctx, orderID, 4)
	if err != nil || before != 2 {
		t.Errorf("VersionBefore(4) = %d, %v; want 2", before, err)
	}
	if _, err := store.VersionBefore(ctx, orderID, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("VersionBefore(1): err = %v, want ErrNotFound", err)
	}
	if _, err := store.ByVersion(ctx, orderID, 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("ByVersion(3): err = %v, want ErrNotFound", err)
	}

	history, err := store.History(ctx, orderID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	var versions []int32
	for _, entry := range history {
		versions = append(versions, entry.Version)
	}
	if len(versions) != 3 || versions[0] != 1 || versions[1] != 2 || versions[2] != 4 {
		t.Errorf("History versions = %v, want [1 2 4]", versions)
	}

	maxKey, err := store.MaxKey(ctx)
	if err != nil || maxKey != 40 {
		t.Errorf("MaxKey = %d, %v; want 40", maxKey, err)
	}

	// Put with an existing version replaces it.
	if err := store.Put(ctx, Entry{ID: orderID, Version: 2, Key: 21}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	replaced, err := store.ByVersion(ctx, orderID, 2)
	if err != nil || replaced.Key != 21 {
		t.Errorf("ByVersion(2) after replace = %+v, %v; want key 21", replaced, err)
	}
}

func TestParsePolicy(t *testing.T) {
	for name, want := range map[string]Policy{"": LatestOnly, "latest": LatestOnly, "any": AnyVersion} {
		got, err := ParsePolicy(name)
		if err != nil || got != want {
			t.Errorf("ParsePolicy(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	if _, err := ParsePolicy("all"); err == nil {
		t.Error("ParsePolicy(all) should fail")
	}
}

func TestEntryOf(t *testing.T) {
	m := resource.NewFormMetadata()
	m.SetResourceID("approve")
	m.SetVersion(3)
	m.SetResourceKey(77)
	m.SetResourceName("approve.form")
	m.SetChecksum([]byte{9})
	m.SetTenantID("acme")

	entry := EntryOf(m)
	want := ID{Kind: resource.KindForm, TenantID: "acme", ResourceID: "approve"}
	if entry.ID != want || entry.Version != 3 || entry.Key != 77 || entry.DeploymentKey != -1 {
		t.Errorf("EntryOf = %+v", entry)
	}
	m.Checksum()[0] = 0
	if entry.Checksum[0] != 9 {
		t.Error("EntryOf checksum aliases the record")
	}
}
