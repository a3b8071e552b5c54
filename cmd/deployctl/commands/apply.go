// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/camunda/camunda-sub024/cmd/deployctl/cli"
)

type applyParams struct {
	configPath string
	hex        bool
	json       bool
}

type applyReport struct {
	TenantID       string          `json:"tenant_id"`
	DeploymentKey  int64           `json:"deployment_key"`
	DuplicatesOnly bool            `json:"duplicates_only"`
	Persisted      []appliedReport `json:"persisted"`
}

type appliedReport struct {
	Kind       string `json:"kind"`
	ResourceID string `json:"resource_id"`
	Version    int32  `json:"version"`
	Key        int64  `json:"key"`
}

func applyCommand(streams Streams) *cli.Command {
	var params applyParams
	return &cli.Command{
		Name:    "apply",
		Summary: "Apply a distributed deployment to this node",
		Description: `Decode a deployment aggregate produced by "deployctl deploy --output"
and persist the resources it introduced: content records for
processes, decision requirements graphs and forms, and a version entry
for each of those and for every decision. Resources flagged as
duplicates are skipped, and an aggregate of duplicates only changes
nothing.

The aggregate is read from FILE, or stdin when FILE is omitted.`,
		Usage: "deployctl apply [flags] [FILE]",
		Examples: []cli.Example{
			{
				Description: "Apply an aggregate built on another partition",
				Command:     "deployctl apply --config partition-2.yaml deployment.cbor",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("apply", pflag.ContinueOnError)
			configFlag(flagSet, &params.configPath)
			flagSet.BoolVar(&params.hex, "hex", false, "input is hex-encoded")
			flagSet.BoolVar(&params.json, "json", false, "print the result as JSON")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			encoded, err := readInput(args, streams.In, params.hex)
			if err != nil {
				return err
			}

			n, err := openNode(ctx, params.configPath, streams)
			if err != nil {
				return err
			}
			defer n.Close()

			result, err := n.applier.Apply(ctx, encoded)
			if err != nil {
				return err
			}

			report := applyReport{
				TenantID:       result.TenantID,
				DeploymentKey:  result.DeploymentKey,
				DuplicatesOnly: result.DuplicatesOnly,
			}
			for _, entry := range result.Persisted {
				report.Persisted = append(report.Persisted, appliedReport{
					Kind:       entry.Kind.String(),
					ResourceID: entry.ResourceID,
					Version:    entry.Version,
					Key:        entry.Key,
				})
			}

			if params.json {
				return cli.WriteJSON(streams.Out, report)
			}
			if report.DuplicatesOnly {
				fmt.Fprintln(streams.Out, "deployment contains duplicates only; nothing applied")
				return nil
			}
			fmt.Fprintf(streams.Out, "applied deployment %d (tenant %s)\n", report.DeploymentKey, report.TenantID)
			for _, entry := range report.Persisted {
				fmt.Fprintf(streams.Out, "  %s %s version %d (key %d)\n", entry.Kind, entry.ResourceID, entry.Version, entry.Key)
			}
			return nil
		},
	}
}
