// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"errors"
	"fmt"
)

var (
	// ErrCorrupt is returned when a buffer is not a valid encoding of
	// the record being decoded: truncated, malformed, a value of the
	// wrong type, or an integer out of range.
	ErrCorrupt = errors.New("record: corrupt buffer")

	// ErrMissingProperty is returned when decoding a buffer that
	// lacks a property which has no default.
	ErrMissingProperty = errors.New("record: required property missing")

	// ErrUnsetProperty is returned when encoding a record whose
	// required property was never assigned.
	ErrUnsetProperty = errors.New("record: required property unset")

	// ErrBufferTooSmall is returned by Encode when the destination
	// cannot hold EncodedLength bytes at the given offset.
	ErrBufferTooSmall = errors.New("record: buffer too small")
)

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}

func truncated(what string) error {
	return corruptf("%s: truncated", what)
}

func propertyError(name string, err error) error {
	return fmt.Errorf("property %q: %w", name, err)
}
