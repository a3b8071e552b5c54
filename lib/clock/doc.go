// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Components that stamp records with the current time take a Clock
// instead of calling time.Now. Production wiring passes Real(); tests
// pass Fake() and move it with Advance:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	store, err := statestore.Open(statestore.Config{Clock: c, ...})
//	c.Advance(time.Minute)
package clock
