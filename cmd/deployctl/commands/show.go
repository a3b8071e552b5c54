// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/spf13/pflag"

	"github.com/camunda/camunda-sub024/cmd/deployctl/cli"
	"github.com/camunda/camunda-sub024/lib/deployment"
	"github.com/camunda/camunda-sub024/lib/distribution"
	"github.com/camunda/camunda-sub024/lib/resource"
)

func showCommand(streams Streams) *cli.Command {
	return &cli.Command{
		Name:    "show",
		Summary: "Read stored resources and deployments",
		Subcommands: []*cli.Command{
			showResourceCommand(streams),
			showDeploymentCommand(streams),
		},
	}
}

type showResourceParams struct {
	configPath string
	output     string
	json       bool
}

func showResourceCommand(streams Streams) *cli.Command {
	var params showResourceParams
	return &cli.Command{
		Name:    "resource",
		Summary: "Print the stored content of a resource version",
		Description: `Fetch the content record stored under a resource key from the
configured content store and print the resource bytes. --json prints
the whole record instead, with the bytes base64-encoded.`,
		Usage: "deployctl show resource [flags] KIND KEY",
		Examples: []cli.Example{
			{
				Description: "Save a deployed process back to a file",
				Command:     "deployctl show resource --output order.bpmn process 2251799813685251",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("resource", pflag.ContinueOnError)
			configFlag(flagSet, &params.configPath)
			flagSet.StringVarP(&params.output, "output", "o", "", "write the resource to this file")
			flagSet.BoolVar(&params.json, "json", false, "print the content record as JSON")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("expected KIND and KEY, got %d arguments", len(args))
			}
			kind, err := resource.ParseKind(args[0])
			if err != nil {
				return err
			}
			key, err := parseKey(args[1])
			if err != nil {
				return err
			}

			n, err := openNode(ctx, params.configPath, streams)
			if err != nil {
				return err
			}
			defer n.Close()

			content, err := distribution.LoadContent(ctx, n.contents, kind, key)
			if err != nil {
				return err
			}
			switch {
			case params.json:
				return writeRecordJSON(streams.Out, content)
			case params.output != "":
				return os.WriteFile(params.output, content.Payload(), 0o644)
			default:
				payload := content.Payload()
				if cli.IsTerminal(streams.Out) && !utf8.Valid(payload) {
					return fmt.Errorf("%v %d is binary; use --output or --json", kind, key)
				}
				_, err = streams.Out.Write(payload)
				return err
			}
		},
	}
}

func showDeploymentCommand(streams Streams) *cli.Command {
	var configPath string
	return &cli.Command{
		Name:    "deployment",
		Summary: "Print an applied deployment",
		Description: `Print the metadata-only aggregate this node recorded when it applied
the deployment with the given key.`,
		Usage: "deployctl show deployment [flags] KEY",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("deployment", pflag.ContinueOnError)
			configFlag(flagSet, &configPath)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected KEY, got %d arguments", len(args))
			}
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}

			n, err := openNode(ctx, configPath, streams)
			if err != nil {
				return err
			}
			defer n.Close()

			encoded, err := n.state.Deployment(ctx, key)
			if err != nil {
				return err
			}
			aggregate := deployment.New()
			if err := aggregate.Wrap(encoded); err != nil {
				return err
			}
			return writeRecordJSON(streams.Out, aggregate)
		},
	}
}

func parseKey(value string) (int64, error) {
	key, err := strconv.ParseInt(value, 10, 64)
	if err != nil || key <= 0 {
		return 0, fmt.Errorf("invalid key %q", value)
	}
	return key, nil
}
