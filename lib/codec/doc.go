// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the single entry point for CBOR (RFC 8949) in this
// module. Every other package imports codec rather than
// fxamacker/cbor directly, so encoder and decoder options live in one
// place.
//
// Two profiles are exposed:
//
//   - Marshal/Unmarshal: reflection-based encoding with Core
//     Deterministic Encoding, used by tooling that handles arbitrary
//     CBOR (the deployctl inspect command, tests).
//
//   - SkipItem/Wellformed: structural helpers used by lib/record. The
//     record layer encodes its own property maps (it never uses
//     reflection) but relies on this package to skip values of
//     unknown properties and to validate that a buffer holds exactly
//     one well-formed item before binding a record to it.
//
// DiagnoseFirst renders RFC 8949 §8 diagnostic notation for
// "deployctl inspect --diag".
package codec
