// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/camunda/camunda-sub024/cmd/deployctl/cli"
	"github.com/camunda/camunda-sub024/lib/checksum"
	"github.com/camunda/camunda-sub024/lib/distribution"
	"github.com/camunda/camunda-sub024/lib/resource"
)

type deployParams struct {
	configPath string
	tenant     string
	versionTag string
	ids        []string
	decisions  []string
	drgNames   []string
	output     string
	noApply    bool
	json       bool
}

func deployCommand(streams Streams) *cli.Command {
	var params deployParams
	return &cli.Command{
		Name:    "deploy",
		Summary: "Version resource files and build a deployment",
		Description: `Version the given resource files as one deployment.

Each file becomes a resource named after its base name; the suffix
selects the kind (.bpmn/.xml process, .dmn decision requirements,
.form form, .rpa RPA script, anything else a generic resource). The
resource id defaults to the file name without its suffix.

When at least one resource is new the deployment gets a key, the new
versions are recorded, and the aggregate is applied to this node
unless --no-apply is given. A deployment of duplicates only records
nothing.`,
		Usage: "deployctl deploy [flags] FILE...",
		Examples: []cli.Example{
			{
				Description: "Deploy a process and a form for one tenant",
				Command:     "deployctl deploy --tenant acme order.bpmn order.form",
			},
			{
				Description: "Deploy a DMN graph declaring two decisions",
				Command:     "deployctl deploy --decision pricing.dmn=discount:Discount --decision pricing.dmn=shipping pricing.dmn",
			},
			{
				Description: "Build the aggregate for another partition without applying it here",
				Command:     "deployctl deploy --no-apply --output deployment.cbor order.bpmn",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("deploy", pflag.ContinueOnError)
			configFlag(flagSet, &params.configPath)
			flagSet.StringVar(&params.tenant, "tenant", "", "tenant id (default: the config's tenant_id)")
			flagSet.StringVar(&params.versionTag, "version-tag", "", "version tag applied to every resource")
			flagSet.StringArrayVar(&params.ids, "id", nil, "resource id override, as FILE=ID (repeatable)")
			flagSet.StringArrayVar(&params.decisions, "decision", nil, "decision declared by a DMN file, as FILE=ID[:NAME] (repeatable)")
			flagSet.StringArrayVar(&params.drgNames, "drg-name", nil, "decision requirements name of a DMN file, as FILE=NAME (repeatable)")
			flagSet.StringVarP(&params.output, "output", "o", "", "write the encoded aggregate to this file")
			flagSet.BoolVar(&params.noApply, "no-apply", false, "do not persist content on this node")
			flagSet.BoolVar(&params.json, "json", false, "print the result as JSON")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return errors.New("at least one resource file is required")
			}
			return runDeploy(ctx, streams, params, args)
		},
	}
}

func runDeploy(ctx context.Context, streams Streams, params deployParams, paths []string) error {
	n, err := openNode(ctx, params.configPath, streams)
	if err != nil {
		return err
	}
	defer n.Close()

	options, err := parseSubmissionOptions(params)
	if err != nil {
		return err
	}
	if options.tenant == "" {
		options.tenant = n.config.TenantID
	}
	submissions, err := buildSubmissions(paths, options)
	if err != nil {
		return err
	}

	result, err := n.submitter.Submit(ctx, submissions)
	if err != nil {
		return err
	}
	report := newDeployReport(result)

	if result.Outcome == distribution.Created && !params.noApply {
		if _, err := n.applier.Apply(ctx, result.Encoded); err != nil {
			return err
		}
		if _, err := n.applier.StoreStandalone(ctx, result.Standalone); err != nil {
			return err
		}
		report.Applied = true
	}
	if params.output != "" {
		if err := os.WriteFile(params.output, result.Encoded, 0o644); err != nil {
			return fmt.Errorf("writing deployment: %w", err)
		}
		report.Output = params.output
	}

	if params.json {
		return cli.WriteJSON(streams.Out, report)
	}
	report.print(streams.Out)
	return nil
}

// submissionOptions are the per-file settings given on the command
// line, keyed by resource name.
type submissionOptions struct {
	tenant     string
	versionTag string
	ids        map[string]string
	decisions  map[string][]distribution.DecisionDeclaration
	drgNames   map[string]string
}

func parseSubmissionOptions(params deployParams) (submissionOptions, error) {
	options := submissionOptions{
		tenant:     params.tenant,
		versionTag: params.versionTag,
		ids:        make(map[string]string),
		decisions:  make(map[string][]distribution.DecisionDeclaration),
		drgNames:   make(map[string]string),
	}
	for _, value := range params.ids {
		file, id, err := splitAssignment("--id", value)
		if err != nil {
			return options, err
		}
		options.ids[file] = id
	}
	for _, value := range params.drgNames {
		file, name, err := splitAssignment("--drg-name", value)
		if err != nil {
			return options, err
		}
		options.drgNames[file] = name
	}
	for _, value := range params.decisions {
		file, declaration, err := splitAssignment("--decision", value)
		if err != nil {
			return options, err
		}
		id, name, _ := strings.Cut(declaration, ":")
		if name == "" {
			name = id
		}
		options.decisions[file] = append(options.decisions[file],
			distribution.DecisionDeclaration{DecisionID: id, DecisionName: name})
	}
	return options, nil
}

// splitAssignment splits FILE=VALUE. FILE is reduced to its base name
// so that "--id ./models/order.bpmn=x" matches the resource name.
func splitAssignment(flagName, value string) (string, string, error) {
	file, rest, ok := strings.Cut(value, "=")
	if !ok || file == "" || rest == "" {
		return "", "", fmt.Errorf("%s %q: want FILE=VALUE", flagName, value)
	}
	return filepath.Base(file), rest, nil
}

// buildSubmissions reads each file and describes it as a submission.
func buildSubmissions(paths []string, options submissionOptions) ([]distribution.Submission, error) {
	submissions := make([]distribution.Submission, 0, len(paths))
	seen := make(map[string]string)
	for _, path := range paths {
		name := filepath.Base(path)
		if previous, ok := seen[name]; ok {
			return nil, fmt.Errorf("%s and %s have the same resource name %q", previous, path, name)
		}
		seen[name] = path

		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		id, ok := options.ids[name]
		if !ok {
			id = strings.TrimSuffix(name, filepath.Ext(name))
		}
		submission := distribution.Submission{
			TenantID:     options.tenant,
			ResourceID:   id,
			ResourceName: name,
			Resource:     content,
			VersionTag:   options.versionTag,
			Decisions:    options.decisions[name],
		}
		if submission.Kind() == resource.KindDecisionRequirements {
			submission.DecisionRequirementsName = options.drgNames[name]
			if submission.DecisionRequirementsName == "" {
				submission.DecisionRequirementsName = id
			}
		}
		submissions = append(submissions, submission)
	}

	for name := range options.decisions {
		if _, ok := seen[name]; !ok {
			return nil, fmt.Errorf("--decision names %s, which is not being deployed", name)
		}
	}
	return submissions, nil
}

type deployReport struct {
	RequestID     string           `json:"request_id"`
	Outcome       string           `json:"outcome"`
	TenantID      string           `json:"tenant_id"`
	DeploymentKey int64            `json:"deployment_key"`
	Resources     []resourceReport `json:"resources"`
	Applied       bool             `json:"applied"`
	Output        string           `json:"output,omitempty"`
}

type resourceReport struct {
	Kind         string `json:"kind"`
	ResourceID   string `json:"resource_id"`
	ResourceName string `json:"resource_name"`
	Version      int32  `json:"version"`
	VersionTag   string `json:"version_tag,omitempty"`
	Key          int64  `json:"key"`
	Duplicate    bool   `json:"duplicate"`
	Checksum     string `json:"checksum"`
}

func newDeployReport(result *distribution.Result) *deployReport {
	aggregate := result.Deployment
	report := &deployReport{
		RequestID:     result.RequestID,
		Outcome:       result.Outcome.String(),
		TenantID:      aggregate.TenantID(),
		DeploymentKey: aggregate.DeploymentKey(),
	}
	add := func(meta resource.Metadata) {
		report.Resources = append(report.Resources, resourceReport{
			Kind:         meta.Kind().String(),
			ResourceID:   meta.ResourceID(),
			ResourceName: meta.ResourceName(),
			Version:      meta.Version(),
			VersionTag:   meta.VersionTag(),
			Key:          meta.ResourceKey(),
			Duplicate:    meta.IsDuplicate(),
			Checksum:     checksum.Format(meta.Checksum()),
		})
	}
	for meta := range aggregate.ProcessesMetadata().All() {
		add(meta)
	}
	for meta := range aggregate.DecisionRequirementsMetadata().All() {
		add(meta)
	}
	for meta := range aggregate.DecisionsMetadata().All() {
		add(meta)
	}
	for meta := range aggregate.FormMetadata().All() {
		add(meta)
	}
	for _, item := range result.Standalone {
		add(item.Metadata)
	}
	return report
}

func (r *deployReport) print(w io.Writer) {
	if r.Outcome == distribution.DuplicatesOnly.String() {
		fmt.Fprintf(w, "nothing to deploy: every resource matches an existing version (tenant %s)\n", r.TenantID)
	} else {
		fmt.Fprintf(w, "deployment %d created (tenant %s)\n", r.DeploymentKey, r.TenantID)
	}

	table := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(table, "KIND\tID\tVERSION\tKEY\tSTATUS")
	for _, entry := range r.Resources {
		status := "new"
		if entry.Duplicate {
			status = "duplicate"
		}
		fmt.Fprintf(table, "%s\t%s\t%d\t%d\t%s\n",
			entry.Kind, entry.ResourceID, entry.Version, entry.Key, status)
	}
	table.Flush()

	if r.Output != "" {
		fmt.Fprintf(w, "aggregate written to %s\n", r.Output)
	}
}
