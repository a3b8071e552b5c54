// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads deployctl node configuration.
//
// Configuration comes from a single file named by either the
// DEPLOYCTL_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no discovery and no fallback path.
// The file is YAML, or JSON with comments and trailing commas when its
// name ends in .jsonc or .json.
//
// Environment sections (development, staging, production) override
// the store, content store and logging settings when
// [Config].Environment matches. Production logs as JSON unless the
// file says otherwise.
//
// ${VAR} and ${VAR:-default} are expanded in the store path and the
// S3 endpoint and credentials, so secrets can stay out of the file.
package config
