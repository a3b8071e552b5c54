// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

// Package statestore is the node-local SQLite persistence for
// deployments. One database holds three tables:
//
//   - resource_versions: one row per accepted version of a resource,
//     keyed by (kind, tenant, resource id, version). [Store] serves
//     these rows through the versioning.Store interface.
//   - resource_contents: encoded content records keyed by (kind,
//     resource key), compressed with package compress.
//   - deployments: the metadata-only aggregate of every applied
//     deployment, keyed by deployment key.
//
// Writes run in IMMEDIATE transactions through sqlitepool; timestamps
// come from an injected clock.
package statestore
