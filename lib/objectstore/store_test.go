// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/camunda/camunda-sub024/lib/resource"
	"github.com/camunda/camunda-sub024/lib/versioning"
)

func TestObjectName(t *testing.T) {
	tests := []struct {
		prefix string
		kind   resource.Kind
		key    int64
		want   string
	}{
		{"", resource.KindProcess, 42, "process/42.cbor"},
		{"node-1", resource.KindForm, 7, "node-1/form/7.cbor"},
		{"a/b/", resource.KindDecisionRequirements, 1, "a/b/decision-requirements/1.cbor"},
	}
	for _, test := range tests {
		if got := ObjectName(test.prefix, test.kind, test.key); got != test.want {
			t.Errorf("ObjectName(%q, %v, %d) = %q, want %q", test.prefix, test.kind, test.key, got, test.want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{Endpoint: "localhost:9000", Bucket: "deployments", AccessKey: "a", SecretKey: "s"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config: %v", err)
	}

	withScheme := valid
	withScheme.Endpoint = "http://localhost:9000"
	if err := withScheme.Validate(); err == nil {
		t.Error("endpoint with scheme should be rejected")
	}

	err := Config{}.Validate()
	if err == nil {
		t.Fatal("empty config should be rejected")
	}
	for _, field := range []string{"endpoint", "bucket", "access key", "secret key"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}

// fakeS3 serves the handful of path-style S3 calls the store makes.
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket, object, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	switch {
	case object == "" && r.Method == http.MethodHead:
		if !f.buckets[bucket] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case object == "" && r.Method == http.MethodPut:
		f.buckets[bucket] = true
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet:
		body, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+
				`<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message>`+
				`<Key>`+object+`</Key><BucketName>`+bucket+`</BucketName></Error>`)
			return
		}
		w.Header().Set("Content-Type", ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Header().Set("ETag", `"etag"`)
		w.Header().Set("Last-Modified", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func openFakeStore(t *testing.T) (*Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{buckets: map[string]bool{}, objects: map[string][]byte{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	store, err := Open(context.Background(), Config{
		Endpoint:  strings.TrimPrefix(server.URL, "http://"),
		Bucket:    "deployments",
		AccessKey: "access",
		SecretKey: "secret",
		Region:    "us-east-1",
		Prefix:    "node-1",
	}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return store, fake
}

func TestOpenCreatesBucket(t *testing.T) {
	_, fake := openFakeStore(t)
	if !fake.buckets["deployments"] {
		t.Error("Open did not create the bucket")
	}
}

func TestContentRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, fake := openFakeStore(t)

	meta := resource.NewFormMetadata()
	meta.SetResourceID("approve")
	meta.SetVersion(2)
	meta.SetResourceKey(77)
	meta.SetResourceName("approve.form")
	meta.SetTenantID("acme")
	if err := store.PutContent(ctx, resource.WrapForm(meta, []byte(`{"components":[]}`))); err != nil {
		t.Fatalf("PutContent: %v", err)
	}
	if _, ok := fake.objects["/deployments/node-1/form/77.cbor"]; !ok {
		t.Fatalf("object not stored under the expected name; have %d objects", len(fake.objects))
	}

	encoded, err := store.GetContent(ctx, resource.KindForm, 77)
	if err != nil {
		t.Fatalf("GetContent: %v", err)
	}
	decoded := resource.NewFormRecord()
	if err := decoded.Wrap(encoded); err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	if decoded.ResourceID() != "approve" || decoded.Version() != 2 || !bytes.Equal(decoded.Payload(), []byte(`{"components":[]}`)) {
		t.Errorf("decoded form: id=%q version=%d payload=%q", decoded.ResourceID(), decoded.Version(), decoded.Payload())
	}
}

func TestMissingContentIsNotFound(t *testing.T) {
	store, _ := openFakeStore(t)
	_, err := store.GetContent(context.Background(), resource.KindProcess, 1)
	if !errors.Is(err, versioning.ErrNotFound) {
		t.Errorf("GetContent of missing object: err = %v, want ErrNotFound", err)
	}
}
