// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package statestore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/camunda/camunda-sub024/lib/clock"
	"github.com/camunda/camunda-sub024/lib/compress"
	"github.com/camunda/camunda-sub024/lib/distribution"
	"github.com/camunda/camunda-sub024/lib/keygen"
	"github.com/camunda/camunda-sub024/lib/resource"
	"github.com/camunda/camunda-sub024/lib/versioning"
)

var orderID = versioning.ID{Kind: resource.KindProcess, TenantID: "acme", ResourceID: "order"}

func openTestStore(t *testing.T, compression Compression) *Store {
	t.Helper()
	store, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "state.db"),
		PoolSize:    2,
		Compression: compression,
		Clock:       clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenRequiresClockAndLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	if _, err := Open(Config{Path: path, Logger: slog.Default()}); err == nil {
		t.Error("Open without Clock should fail")
	}
	if _, err := Open(Config{Path: path, Clock: clock.Real()}); err == nil {
		t.Error("Open without Logger should fail")
	}
}

func TestVersionLookups(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, Compression{Auto: true})

	for _, entry := range []versioning.Entry{
		{ID: orderID, Version: 2, VersionTag: "v2", Key: 20, ResourceName: "order.bpmn", Checksum: []byte{2}, DeploymentKey: 200},
		{ID: orderID, Version: 1, VersionTag: "v1", Key: 10, ResourceName: "order.bpmn", Checksum: []byte{1}, DeploymentKey: 100},
		{ID: orderID, Version: 4, VersionTag: "v2", Key: 40, ResourceName: "order.bpmn", Checksum: []byte{4}, DeploymentKey: 400},
	} {
		if err := store.Put(ctx, entry); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	latest, err := store.Latest(ctx, orderID)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Version != 4 || latest.Key != 40 || !bytes.Equal(latest.Checksum, []byte{4}) || latest.ID != orderID {
		t.Errorf("Latest = %+v", latest)
	}

	byTag, err := store.ByVersionTag(ctx, orderID, "v2")
	if err != nil || byTag.Version != 4 {
		t.Errorf("ByVersionTag(v2) = %+v, %v; want version 4", byTag, err)
	}
	byDeployment, err := store.ByDeploymentKey(ctx, orderID, 200)
	if err != nil || byDeployment.Version != 2 {
		t.Errorf("ByDeploymentKey(200) = %+v, %v; want version 2", byDeployment, err)
	}
	before, err := store.VersionBefore(ctx, orderID, 4)
	if err != nil || before != 2 {
		t.Errorf("VersionBefore(4) = %d, %v; want 2", before, err)
	}
	if _, err := store.VersionBefore(ctx, orderID, 1); !errors.Is(err, versioning.ErrNotFound) {
		t.Errorf("VersionBefore(1): err = %v, want ErrNotFound", err)
	}
	if _, err := store.ByVersion(ctx, orderID, 3); !errors.Is(err, versioning.ErrNotFound) {
		t.Errorf("ByVersion(3): err = %v, want ErrNotFound", err)
	}

	history, err := store.History(ctx, orderID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 || history[0].Version != 1 || history[1].Version != 2 || history[2].Version != 4 {
		t.Errorf("History = %+v, want versions 1 2 4", history)
	}

	maxKey, err := store.MaxKey(ctx)
	if err != nil || maxKey != 40 {
		t.Errorf("MaxKey = %d, %v; want 40", maxKey, err)
	}
}

func TestEmptyVersionTagNeverMatches(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, Compression{Auto: true})
	for _, entry := range []versioning.Entry{
		{ID: orderID, Version: 1, Key: 10, ResourceName: "order.bpmn"},
		{ID: orderID, Version: 2, VersionTag: "v2", Key: 20, ResourceName: "order.bpmn"},
		{ID: orderID, Version: 3, Key: 30, ResourceName: "order.bpmn"},
	} {
		if err := store.Put(ctx, entry); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if entry, err := store.ByVersionTag(ctx, orderID, ""); !errors.Is(err, versioning.ErrNotFound) {
		t.Errorf("ByVersionTag(\"\") = %+v, %v; want ErrNotFound", entry, err)
	}
	if entry, err := store.ByVersionTag(ctx, orderID, "v2"); err != nil || entry.Version != 2 {
		t.Errorf("ByVersionTag(v2) = %+v, %v; want version 2", entry, err)
	}
}

func TestPutReplacesSameVersion(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, Compression{Auto: true})
	if err := store.Put(ctx, versioning.Entry{ID: orderID, Version: 1, Key: 10, ResourceName: "a.bpmn"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, versioning.Entry{ID: orderID, Version: 1, Key: 11, ResourceName: "b.bpmn"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	history, err := store.History(ctx, orderID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Key != 11 || history[0].ResourceName != "b.bpmn" {
		t.Errorf("History after replace = %+v", history)
	}
}

func TestHistoriesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, Compression{Auto: true})
	if err := store.Put(ctx, versioning.Entry{ID: orderID, Version: 1, Key: 10, ResourceName: "order.bpmn"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	for _, id := range []versioning.ID{
		{Kind: resource.KindProcess, TenantID: "globex", ResourceID: "order"},
		{Kind: resource.KindForm, TenantID: "acme", ResourceID: "order"},
	} {
		if _, err := store.Latest(ctx, id); !errors.Is(err, versioning.ErrNotFound) {
			t.Errorf("Latest(%v): err = %v, want ErrNotFound", id, err)
		}
	}
}

func TestEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, Compression{Auto: true})
	maxKey, err := store.MaxKey(ctx)
	if err != nil || maxKey != 0 {
		t.Errorf("MaxKey = %d, %v; want 0", maxKey, err)
	}
	history, err := store.History(ctx, orderID)
	if err != nil || len(history) != 0 {
		t.Errorf("History = %v, %v; want empty", history, err)
	}
}

func TestVersionerOverStore(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, Compression{Auto: true})
	keys := &counter{}
	v := versioning.New(store, keys, versioning.LatestOnly, slog.New(slog.NewTextHandler(io.Discard, nil)))

	candidate := versioning.Candidate{ID: orderID, Checksum: []byte("digest")}
	first, err := v.Resolve(ctx, candidate)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := v.Record(ctx, versioning.Entry{ID: orderID, Version: first.Version, Key: first.Key, ResourceName: "order.bpmn", Checksum: candidate.Checksum}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	second, err := v.Resolve(ctx, candidate)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !second.Duplicate || second.Key != first.Key {
		t.Errorf("second resolve = %+v, want duplicate of %+v", second, first)
	}
}

type counter struct{ last int64 }

func (c *counter) Next() int64 {
	c.last++
	return c.last
}

func newProcessContent(key int64, payload []byte) resource.Content {
	meta := resource.NewProcessMetadata()
	meta.SetResourceID("order")
	meta.SetVersion(1)
	meta.SetResourceKey(key)
	meta.SetResourceName("order.bpmn")
	meta.SetChecksum([]byte{0xab})
	meta.SetTenantID("acme")
	return resource.WrapProcess(meta, payload)
}

func TestContentRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat(`<bpmn:task id="t"/>`, 200))
	for _, compression := range []Compression{
		{Auto: true},
		{Tag: compress.None},
		{Tag: compress.LZ4},
		{Tag: compress.Zstd},
	} {
		t.Run(compressionName(compression), func(t *testing.T) {
			ctx := context.Background()
			store := openTestStore(t, compression)
			content := newProcessContent(42, payload)
			if err := store.PutContent(ctx, content); err != nil {
				t.Fatalf("PutContent: %v", err)
			}

			encoded, err := store.GetContent(ctx, resource.KindProcess, 42)
			if err != nil {
				t.Fatalf("GetContent: %v", err)
			}
			decoded := resource.NewProcessRecord()
			if err := decoded.Wrap(encoded); err != nil {
				t.Fatalf("Wrap: %v", err)
			}
			if !bytes.Equal(decoded.Payload(), payload) || decoded.ResourceKey() != 42 || decoded.TenantID() != "acme" {
				t.Errorf("decoded content: key=%d tenant=%q payload %d bytes",
					decoded.ResourceKey(), decoded.TenantID(), len(decoded.Payload()))
			}
		})
	}
}

func compressionName(c Compression) string {
	if c.Auto {
		return "auto"
	}
	return c.Tag.String()
}

func TestContentKeyedByKind(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, Compression{Auto: true})
	if err := store.PutContent(ctx, newProcessContent(7, []byte("<definitions/>"))); err != nil {
		t.Fatalf("PutContent: %v", err)
	}
	if _, err := store.GetContent(ctx, resource.KindForm, 7); !errors.Is(err, versioning.ErrNotFound) {
		t.Errorf("GetContent(form, 7): err = %v, want ErrNotFound", err)
	}
}

func TestDeploymentRecords(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, Compression{Auto: true})

	if _, err := store.Deployment(ctx, 9); !errors.Is(err, versioning.ErrNotFound) {
		t.Errorf("Deployment(9) before record: err = %v, want ErrNotFound", err)
	}
	if err := store.RecordDeployment(ctx, 9, "acme", []byte{0xa0}); err != nil {
		t.Fatalf("RecordDeployment: %v", err)
	}
	encoded, err := store.Deployment(ctx, 9)
	if err != nil || !bytes.Equal(encoded, []byte{0xa0}) {
		t.Errorf("Deployment(9) = %x, %v", encoded, err)
	}
	maxKey, err := store.MaxDeploymentKey(ctx)
	if err != nil || maxKey != 9 {
		t.Errorf("MaxDeploymentKey = %d, %v; want 9", maxKey, err)
	}
}

func TestLastKeyIgnoresOtherPartitions(t *testing.T) {
	store := openTestStore(t, Compression{Auto: true})
	ctx := context.Background()

	if lastKey, err := store.LastKey(ctx, 2); err != nil || lastKey != 0 {
		t.Fatalf("LastKey on empty store = %d, %v", lastKey, err)
	}

	own := keygen.Encode(2, 40)
	foreign := keygen.Encode(3, 7)
	for _, entry := range []versioning.Entry{
		{ID: versioning.ID{Kind: resource.KindProcess, ResourceID: "own"}, Version: 1, Key: own, DeploymentKey: keygen.Encode(2, 41)},
		{ID: versioning.ID{Kind: resource.KindProcess, ResourceID: "foreign"}, Version: 1, Key: foreign, DeploymentKey: foreign + 1},
	} {
		if err := store.Put(ctx, entry); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if err := store.RecordDeployment(ctx, keygen.Encode(2, 45), "", []byte{0xa0}); err != nil {
		t.Fatalf("RecordDeployment: %v", err)
	}
	if err := store.RecordDeployment(ctx, foreign+1, "", []byte{0xa0}); err != nil {
		t.Fatalf("RecordDeployment: %v", err)
	}

	lastKey, err := store.LastKey(ctx, 2)
	if err != nil {
		t.Fatalf("LastKey: %v", err)
	}
	if lastKey != keygen.Encode(2, 45) {
		t.Errorf("LastKey = %d, want %d", lastKey, keygen.Encode(2, 45))
	}
	if _, err := keygen.NewGenerator(2, lastKey); err != nil {
		t.Errorf("LastKey is not a valid generator seed: %v", err)
	}
}

func TestLastKeyCoversUnloggedDeployments(t *testing.T) {
	tests := []struct {
		name  string
		apply bool
	}{
		{"standalone only, applied", true},
		{"submitted without apply", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctx := context.Background()
			store := openTestStore(t, Compression{Auto: true})
			keys, err := keygen.NewGenerator(1, 0)
			if err != nil {
				t.Fatalf("NewGenerator: %v", err)
			}
			submitter, err := distribution.NewSubmitter(distribution.SubmitterConfig{
				Versioner: versioning.New(store, keys, versioning.LatestOnly, nil),
				Keys:      keys,
			})
			if err != nil {
				t.Fatalf("NewSubmitter: %v", err)
			}
			result, err := submitter.Submit(ctx, []distribution.Submission{{
				ResourceID:   "bot",
				ResourceName: "bot.rpa",
				Resource:     []byte("print('hello')"),
			}})
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if result.Outcome != distribution.Created {
				t.Fatalf("outcome = %v, want created", result.Outcome)
			}
			deploymentKey := result.Deployment.DeploymentKey()

			if test.apply {
				applier, err := distribution.NewApplier(distribution.ApplierConfig{
					Versions: store, Contents: store, Deployments: store,
				})
				if err != nil {
					t.Fatalf("NewApplier: %v", err)
				}
				if _, err := applier.Apply(ctx, result.Encoded); err != nil {
					t.Fatalf("Apply: %v", err)
				}
				if _, err := applier.StoreStandalone(ctx, result.Standalone); err != nil {
					t.Fatalf("StoreStandalone: %v", err)
				}
			}

			lastKey, err := store.LastKey(ctx, 1)
			if err != nil {
				t.Fatalf("LastKey: %v", err)
			}
			if lastKey < deploymentKey {
				t.Errorf("LastKey = %d, below deployment key %d", lastKey, deploymentKey)
			}
			restarted, err := keygen.NewGenerator(1, lastKey)
			if err != nil {
				t.Fatalf("NewGenerator: %v", err)
			}
			if next := restarted.Next(); next <= deploymentKey {
				t.Errorf("restarted generator minted %d, deployment key is %d", next, deploymentKey)
			}
		})
	}
}

func TestReopenKeepsState(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")
	config := Config{
		Path:        path,
		Compression: Compression{Auto: true},
		Clock:       clock.Real(),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	store, err := Open(config)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Put(ctx, versioning.Entry{ID: orderID, Version: 1, Key: 5, ResourceName: "order.bpmn"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(config)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if latest, err := reopened.Latest(ctx, orderID); err != nil || latest.Key != 5 {
		t.Errorf("Latest after reopen = %+v, %v", latest, err)
	}
}

func TestParseCompression(t *testing.T) {
	for name, want := range map[string]Compression{
		"":     {Auto: true},
		"auto": {Auto: true},
		"none": {Tag: compress.None},
		"zstd": {Tag: compress.Zstd},
		"lz4":  {Tag: compress.LZ4},
	} {
		got, err := ParseCompression(name)
		if err != nil || got != want {
			t.Errorf("ParseCompression(%q) = %+v, %v; want %+v", name, got, err, want)
		}
	}
	if _, err := ParseCompression("brotli"); err == nil {
		t.Error("ParseCompression(brotli) should fail")
	}
}
