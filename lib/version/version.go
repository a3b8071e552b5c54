// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/camunda/camunda-sub024/lib/checksum"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// Info returns a formatted version string suitable for --version output.
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}

// Full returns Info plus the Go version and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Build is the machine-readable form of the build information.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildTime string `json:"build_time"`
	Go        string `json:"go"`
	Platform  string `json:"platform"`

	// Binary is the hex digest of the running executable, empty when
	// it could not be read.
	Binary string `json:"binary,omitempty"`
}

// Current describes the running binary. The executable is digested
// with algorithm.
func Current(algorithm checksum.Algorithm) Build {
	build := Build{
		Version:   Version,
		Commit:    GitCommit,
		Dirty:     GitDirty == "true",
		BuildTime: BuildTime,
		Go:        runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if digest, _, err := SelfChecksum(algorithm); err == nil {
		build.Binary = checksum.Format(digest)
	}
	return build
}

// SelfChecksum returns the digest and resolved path of the running
// executable.
func SelfChecksum(algorithm checksum.Algorithm) ([]byte, string, error) {
	executable, err := os.Executable()
	if err != nil {
		return nil, "", fmt.Errorf("resolving executable path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(executable)
	if err != nil {
		return nil, "", fmt.Errorf("resolving symlinks for %s: %w", executable, err)
	}
	digest, err := checksum.SumFile(algorithm, resolved)
	if err != nil {
		return nil, "", err
	}
	return digest, resolved, nil
}
