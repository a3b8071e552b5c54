// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode follows Core Deterministic Encoding (RFC 8949 §4.2).
var encMode cbor.EncMode

// decMode ignores unknown struct fields.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Records never use non-string map keys. Any-typed targets
		// (the inspect tooling, skipped values) decode maps as
		// map[string]any so the result is directly JSON-compatible.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		// A deployment aggregate may carry a large number of
		// resources. The defaults (131072) are raised so that a
		// well-formed aggregate is never rejected by the skip path
		// before the record layer sees it.
		MaxArrayElements: 1 << 24,
		MaxMapPairs:      1 << 24,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v deterministically.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// SkipItem returns the encoded length of the first CBOR data item in
// data without interpreting it. The item may be of any type,
// including nested maps, arrays, tags and indefinite-length items.
// A truncated or malformed item returns an error (io.ErrUnexpectedEOF
// for truncation, a cbor.SyntaxError for malformed input).
func SkipItem(data []byte) (int, error) {
	var skipped cbor.RawMessage
	rest, err := decMode.UnmarshalFirst(data, &skipped)
	if err != nil {
		return 0, err
	}
	return len(data) - len(rest), nil
}

// Wellformed checks that data holds exactly one well-formed CBOR data
// item with no trailing bytes.
func Wellformed(data []byte) error {
	return decMode.Wellformed(data)
}

// DiagnoseFirst renders the first item of data in diagnostic notation
// (RFC 8949 §8) and returns the bytes after it, so a sequence of
// records can be printed item by item.
func DiagnoseFirst(data []byte) (string, []byte, error) {
	return cbor.DiagnoseFirst(data)
}
