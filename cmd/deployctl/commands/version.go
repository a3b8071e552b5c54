// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/camunda/camunda-sub024/cmd/deployctl/cli"
	"github.com/camunda/camunda-sub024/lib/checksum"
	"github.com/camunda/camunda-sub024/lib/version"
)

func versionCommand(streams Streams) *cli.Command {
	var asJSON bool
	var algorithm string
	return &cli.Command{
		Name:    "version",
		Summary: "Print build information",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("version", pflag.ContinueOnError)
			flagSet.BoolVar(&asJSON, "json", false, "print build information and the binary digest as JSON")
			flagSet.StringVar(&algorithm, "checksum", checksum.BLAKE3.String(), "digest algorithm for the binary")
			return flagSet
		},
		Run: func(context.Context, []string) error {
			if !asJSON {
				fmt.Fprintln(streams.Out, "deployctl", version.Full())
				return nil
			}
			parsed, err := checksum.ParseAlgorithm(algorithm)
			if err != nil {
				return err
			}
			return cli.WriteJSON(streams.Out, version.Current(parsed))
		},
	}
}
