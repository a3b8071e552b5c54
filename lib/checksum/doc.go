// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

// Package checksum fingerprints resource bytes for duplicate
// detection. Two submissions of a resource are the same version
// exactly when their checksums are byte-equal, so every process that
// shares a version history must be configured with the same
// algorithm.
package checksum
