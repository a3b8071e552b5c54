// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands assembles the deployctl command tree.
//
// Commands that touch state open a node: the config file, the SQLite
// state store, the content store it names (the state database or an
// S3 bucket), and a key generator resumed from the highest key this
// partition has minted. "deploy" runs the submitting side of a
// deployment and "apply" the receiving side, so an aggregate written
// by deploy --output on one partition can be applied on another.
package commands
