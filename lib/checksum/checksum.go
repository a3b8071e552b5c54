// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package checksum

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Algorithm selects the digest used to fingerprint resource bytes.
type Algorithm int

const (
	// BLAKE3 is the default: 32-byte digests, fastest of the three on
	// large resources.
	BLAKE3 Algorithm = iota

	// SHA256 produces 32-byte digests.
	SHA256

	// MD5 produces 16-byte digests. It is kept for compatibility
	// with version histories written by engines that fingerprint
	// resources with MD5; it is not collision resistant.
	MD5
)

func (a Algorithm) String() string {
	switch a {
	case BLAKE3:
		return "blake3"
	case SHA256:
		return "sha256"
	case MD5:
		return "md5"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm is the inverse of String. The empty string selects
// the default.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "", "blake3":
		return BLAKE3, nil
	case "sha256":
		return SHA256, nil
	case "md5":
		return MD5, nil
	default:
		return 0, fmt.Errorf("unknown checksum algorithm %q (want blake3, sha256, or md5)", name)
	}
}

func (a Algorithm) newHash() hash.Hash {
	switch a {
	case SHA256:
		return sha256.New()
	case MD5:
		return md5.New()
	default:
		return blake3.New()
	}
}

// Sum returns the digest of data.
func Sum(algorithm Algorithm, data []byte) []byte {
	switch algorithm {
	case SHA256:
		digest := sha256.Sum256(data)
		return digest[:]
	case MD5:
		digest := md5.Sum(data)
		return digest[:]
	default:
		digest := blake3.Sum256(data)
		return digest[:]
	}
}

// SumFile computes the digest of the file at path, streaming it
// through the hash so memory use is constant regardless of size.
func SumFile(algorithm Algorithm, path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := algorithm.newHash()
	if _, err := io.Copy(hasher, file); err != nil {
		return nil, fmt.Errorf("hashing %s: %w", path, err)
	}
	return hasher.Sum(nil), nil
}

// Format returns the hex encoding of a digest. This is the form used
// in log output and the history listing.
func Format(digest []byte) string {
	return hex.EncodeToString(digest)
}

// Parse decodes a hex digest. The length is not checked against any
// algorithm: histories may mix algorithms after a configuration change.
func Parse(hexString string) ([]byte, error) {
	digest, err := hex.DecodeString(hexString)
	if err != nil {
		return nil, fmt.Errorf("parsing checksum: %w", err)
	}
	return digest, nil
}
