// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/camunda/camunda-sub024/cmd/deployctl/cli"
)

// Streams are the standard streams a command reads and writes.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StandardStreams returns the process's own stdin, stdout and stderr.
func StandardStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Root builds the deployctl command tree.
func Root(streams Streams) *cli.Command {
	return &cli.Command{
		Name:       "deployctl",
		Summary:    "Version and distribute process automation resources",
		HelpOutput: streams.Err,
		Description: `deployctl versions BPMN processes, DMN decision graphs, forms, RPA
scripts and other resources, and builds the deployment aggregate that
carries them to every partition.

A node's state (version histories, content records, applied
deployments) lives in a SQLite database; content records may go to an
S3-compatible bucket instead. The config file is named by --config or
the DEPLOYCTL_CONFIG environment variable.`,
		Subcommands: []*cli.Command{
			deployCommand(streams),
			applyCommand(streams),
			historyCommand(streams),
			showCommand(streams),
			inspectCommand(streams),
			versionCommand(streams),
		},
	}
}

// configFlag registers --config on flagSet.
func configFlag(flagSet *pflag.FlagSet, path *string) {
	flagSet.StringVarP(path, "config", "c", "", "config file (default: $DEPLOYCTL_CONFIG)")
}
