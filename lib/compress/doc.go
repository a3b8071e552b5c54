// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

// Package compress shrinks stored resource payloads. Deployed models
// are text and are read far less often than they are kept, so the
// state store compresses every content record before writing it and
// records the Tag alongside so readers can reverse it.
package compress
