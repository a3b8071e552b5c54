// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind deployctl.
//
// A [Command] tree is dispatched by [Command.Execute]: the first
// positional argument selects a subcommand, flags are parsed with
// pflag, and the remaining arguments reach Run. Unknown commands and
// flags get a "did you mean" suggestion when an existing name is
// within edit distance 3.
package cli
