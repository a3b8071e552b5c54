// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package versioning

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// Policy decides which prior versions a submission is compared with.
type Policy int

const (
	// LatestOnly treats a submission as a duplicate only when it
	// matches the latest version. Re-deploying an older version's
	// bytes creates a new version, which makes rollback-by-redeploy
	// visible in the history.
	LatestOnly Policy = iota

	// AnyVersion treats a submission as a duplicate of whichever
	// prior version it matches.
	AnyVersion
)

func (p Policy) String() string {
	switch p {
	case LatestOnly:
		return "latest"
	case AnyVersion:
		return "any"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy is the inverse of String. The empty string selects
// LatestOnly.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", "latest":
		return LatestOnly, nil
	case "any":
		return AnyVersion, nil
	default:
		return 0, fmt.Errorf("unknown duplicate scope %q (want latest or any)", name)
	}
}

// KeySource mints resource keys. *keygen.Generator satisfies it.
type KeySource interface {
	Next() int64
}

// Candidate is a resource offered for deployment.
type Candidate struct {
	ID
	Checksum []byte
}

// Assignment is the version and key a candidate resolves to.
type Assignment struct {
	Version   int32
	Key       int64
	Duplicate bool
}

// Versioner assigns versions to candidates against a Store.
//
// Resolve does not write: the caller records the accepted entries
// once the whole deployment has been resolved, so a deployment that
// turns out to be all duplicates leaves the store untouched. Callers
// that resolve concurrently for the same ID must serialize
// Resolve+Record themselves.
type Versioner struct {
	store  Store
	keys   KeySource
	policy Policy
	logger *slog.Logger
}

// New returns a Versioner over store. A nil logger discards.
func New(store Store, keys KeySource, policy Policy, logger *slog.Logger) *Versioner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Versioner{store: store, keys: keys, policy: policy, logger: logger}
}

func (v *Versioner) Policy() Policy { return v.policy }

// Resolve decides whether candidate is a new version or a duplicate.
// A new version gets the next version number and a fresh key; a
// duplicate gets the matched version and its existing key. A
// candidate without a checksum is never a duplicate.
func (v *Versioner) Resolve(ctx context.Context, candidate Candidate) (Assignment, error) {
	latest, err := v.store.Latest(ctx, candidate.ID)
	if errors.Is(err, ErrNotFound) {
		return Assignment{Version: 1, Key: v.keys.Next()}, nil
	}
	if err != nil {
		return Assignment{}, fmt.Errorf("resolving %v: %w", candidate.ID, err)
	}

	if len(candidate.Checksum) > 0 {
		if bytes.Equal(latest.Checksum, candidate.Checksum) {
			return Assignment{Version: latest.Version, Key: latest.Key, Duplicate: true}, nil
		}
		if v.policy == AnyVersion {
			match, found, err := v.findByChecksum(ctx, candidate)
			if err != nil {
				return Assignment{}, err
			}
			if found {
				v.logger.Debug("submission matches an earlier version",
					"resource", candidate.ID.String(),
					"matched_version", match.Version,
					"latest_version", latest.Version,
				)
				return Assignment{Version: match.Version, Key: match.Key, Duplicate: true}, nil
			}
		}
	}

	if latest.Version == math.MaxInt32 {
		return Assignment{}, fmt.Errorf("resolving %v: version counter exhausted", candidate.ID)
	}
	return Assignment{Version: latest.Version + 1, Key: v.keys.Next()}, nil
}

// findByChecksum searches the history newest-first for an entry with
// the candidate's checksum.
func (v *Versioner) findByChecksum(ctx context.Context, candidate Candidate) (Entry, bool, error) {
	history, err := v.store.History(ctx, candidate.ID)
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading history of %v: %w", candidate.ID, err)
	}
	for i := len(history) - 1; i >= 0; i-- {
		if bytes.Equal(history[i].Checksum, candidate.Checksum) {
			return history[i], true, nil
		}
	}
	return Entry{}, false, nil
}

// Record writes accepted entries to the store.
func (v *Versioner) Record(ctx context.Context, entries ...Entry) error {
	for _, entry := range entries {
		if err := v.store.Put(ctx, entry); err != nil {
			return fmt.Errorf("recording %v version %d: %w", entry.ID, entry.Version, err)
		}
	}
	return nil
}
