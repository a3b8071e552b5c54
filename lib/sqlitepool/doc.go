// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool wraps zombiezen.com/go/sqlite's connection pool
// with the pragmas and transaction helpers the state store relies on.
//
// Every connection is opened with:
//
//   - journal_mode=WAL: readers never block the writer and vice versa.
//   - synchronous=NORMAL: commits survive a process crash; an OS crash
//     may lose the last transactions, which a deployment client
//     recovers from by resubmitting (resubmission is idempotent).
//   - busy_timeout: writers queue for the lock instead of failing.
//   - cache_size=-8192 and temp_store=MEMORY.
//
// Callers either Take/Put connections directly or use Read and Write,
// which borrow a connection for the duration of a callback. Write runs
// the callback inside an IMMEDIATE transaction:
//
//	err := pool.Write(ctx, func(conn *sqlite.Conn) error {
//	    return sqlitex.Execute(conn, "INSERT ...", &sqlitex.ExecOptions{Args: args})
//	})
package sqlitepool
