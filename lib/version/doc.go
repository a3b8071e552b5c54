// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for deployctl.
//
// Four package-level variables are injected at build time via
// -ldflags -X, for example:
//
//	go build -ldflags "-X github.com/camunda/camunda-sub024/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// They default to "unknown" / "0.1.0-dev" in development builds and
// test runs. [Info] and [Full] format them for humans; [Current]
// returns them as a [Build] for JSON output, together with a digest of
// the running executable.
package version
