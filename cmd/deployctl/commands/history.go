// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/camunda/camunda-sub024/cmd/deployctl/cli"
	"github.com/camunda/camunda-sub024/lib/checksum"
	"github.com/camunda/camunda-sub024/lib/resource"
	"github.com/camunda/camunda-sub024/lib/versioning"
)

type historyParams struct {
	configPath string
	tenant     string
	version    int32
	tag        string
	deployment int64
	latest     bool
	before     int32
	json       bool
}

type versionReport struct {
	Version       int32  `json:"version"`
	VersionTag    string `json:"version_tag,omitempty"`
	Key           int64  `json:"key"`
	DeploymentKey int64  `json:"deployment_key"`
	ResourceName  string `json:"resource_name"`
	Checksum      string `json:"checksum"`
}

func historyCommand(streams Streams) *cli.Command {
	var params historyParams
	return &cli.Command{
		Name:    "history",
		Summary: "List the versions of a resource",
		Description: `List every recorded version of one resource, oldest first.

--version, --tag, --deployment, --latest and --before each narrow the
output to a single version. The command exits 1 when nothing matches.`,
		Usage: "deployctl history [flags] KIND ID",
		Examples: []cli.Example{
			{
				Description: "Show the version history of a process",
				Command:     "deployctl history process order",
			},
			{
				Description: "Find the version tagged v2 of a form for a tenant",
				Command:     "deployctl history --tenant acme --tag v2 form order-form",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("history", pflag.ContinueOnError)
			configFlag(flagSet, &params.configPath)
			flagSet.StringVar(&params.tenant, "tenant", "", "tenant id (default: the config's tenant_id)")
			flagSet.Int32Var(&params.version, "version", 0, "show only this version")
			flagSet.StringVar(&params.tag, "tag", "", "show only the latest version with this tag")
			flagSet.Int64Var(&params.deployment, "deployment", 0, "show only the version created by this deployment key")
			flagSet.BoolVar(&params.latest, "latest", false, "show only the latest version")
			flagSet.Int32Var(&params.before, "before", 0, "show only the version preceding this one")
			flagSet.BoolVar(&params.json, "json", false, "print the result as JSON")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("expected KIND and ID, got %d arguments", len(args))
			}
			kind, err := resource.ParseKind(args[0])
			if err != nil {
				return err
			}

			n, err := openNode(ctx, params.configPath, streams)
			if err != nil {
				return err
			}
			defer n.Close()

			tenant := params.tenant
			if tenant == "" {
				tenant = n.config.TenantID
			}
			if tenant == "" {
				tenant = resource.DefaultTenantID
			}
			id := versioning.ID{Kind: kind, TenantID: tenant, ResourceID: args[1]}

			entries, err := lookupVersions(ctx, n.state, id, params)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(streams.Err, "no matching versions of %v\n", id)
				return &cli.ExitError{Code: 1}
			}

			reports := make([]versionReport, 0, len(entries))
			for _, entry := range entries {
				reports = append(reports, versionReport{
					Version:       entry.Version,
					VersionTag:    entry.VersionTag,
					Key:           entry.Key,
					DeploymentKey: entry.DeploymentKey,
					ResourceName:  entry.ResourceName,
					Checksum:      checksum.Format(entry.Checksum),
				})
			}
			if params.json {
				return cli.WriteJSON(streams.Out, reports)
			}

			table := tabwriter.NewWriter(streams.Out, 2, 0, 2, ' ', 0)
			fmt.Fprintln(table, "VERSION\tTAG\tKEY\tDEPLOYMENT\tNAME\tCHECKSUM")
			for _, report := range reports {
				fmt.Fprintf(table, "%d\t%s\t%d\t%d\t%s\t%s\n", report.Version, report.VersionTag,
					report.Key, report.DeploymentKey, report.ResourceName, report.Checksum)
			}
			return table.Flush()
		},
	}
}

// lookupVersions applies the single-version filters. A lookup
// that matches nothing returns an empty slice, not an error.
func lookupVersions(ctx context.Context, store versioning.Store, id versioning.ID, params historyParams) ([]versioning.Entry, error) {
	var entry versioning.Entry
	var err error
	switch {
	case params.version != 0:
		entry, err = store.ByVersion(ctx, id, params.version)
	case params.tag != "":
		entry, err = store.ByVersionTag(ctx, id, params.tag)
	case params.deployment != 0:
		entry, err = store.ByDeploymentKey(ctx, id, params.deployment)
	case params.latest:
		entry, err = store.Latest(ctx, id)
	case params.before != 0:
		var previous int32
		if previous, err = store.VersionBefore(ctx, id, params.before); err == nil {
			entry, err = store.ByVersion(ctx, id, previous)
		}
	default:
		return store.History(ctx, id)
	}
	if errors.Is(err, versioning.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []versioning.Entry{entry}, nil
}
