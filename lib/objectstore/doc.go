// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

// Package objectstore keeps encoded content records in an S3-compatible
// bucket (MinIO, AWS S3, Ceph RGW) through minio-go. It is the
// alternative to the SQLite content table in package statestore for
// clusters whose nodes share one bucket.
//
// Objects are named <prefix>/<kind>/<key>.cbor. The key alone is unique
// within a kind, so the tenant is recorded in object metadata rather
// than in the name.
package objectstore
