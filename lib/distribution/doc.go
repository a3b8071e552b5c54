// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

// Package distribution runs a deployment from raw submissions to
// persisted resources.
//
// The submitting side ([Submitter]) validates a batch of submissions,
// classifies them by kind, checksums and versions each one, and builds
// the deployment aggregate. A batch in which every resource matches an
// existing version ends as [DuplicatesOnly]: nothing is recorded and
// no deployment key is minted. Any new version makes the outcome
// [Created].
//
// The receiving side ([Applier]) decodes the aggregate, pairs every
// new metadata entry with its raw bytes to build a content record,
// stores it through a [ContentStore] and upserts the version entry.
// The aggregate is then re-encoded without its raw resources.
package distribution
