// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/camunda/camunda-sub024/cmd/deployctl/cli"
	"github.com/camunda/camunda-sub024/lib/config"
	"github.com/camunda/camunda-sub024/lib/keygen"
)

const (
	orderBpmn   = `<definitions><process id="order"/></definitions>`
	orderForm   = `{"id":"order-form","components":[]}`
	pricingDmn  = `<definitions id="pricing"><decision id="discount"/></definitions>`
	cleanupRpa  = `*** Tasks ***\nCleanup\n    Log    done`
	orderBpmnV2 = `<definitions><process id="order" name="v2"/></definitions>`
)

// writeNodeConfig writes a config for a node whose state lives in dir.
func writeNodeConfig(t *testing.T, dir string, partitionID int32) string {
	t.Helper()
	path := filepath.Join(dir, "deployctl.yaml")
	content := fmt.Sprintf(`
partition_id: %d
store:
  path: %s
logging:
  level: error
  format: json
`, partitionID, filepath.Join(dir, "state", "state.db"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

// writeResources writes name/content pairs into a fresh directory and
// returns the file paths in order.
func writeResources(t *testing.T, pairs ...string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for i := 0; i < len(pairs); i += 2 {
		path := filepath.Join(dir, pairs[i])
		if err := os.WriteFile(path, []byte(pairs[i+1]), 0o644); err != nil {
			t.Fatalf("writing %s: %v", pairs[i], err)
		}
		paths = append(paths, path)
	}
	return paths
}

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	streams := Streams{In: strings.NewReader(stdin), Out: &stdout, Err: &stderr}
	err := Root(streams).Execute(context.Background(), args)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	r := execute(t, "", args...)
	if r.err != nil {
		t.Fatalf("deployctl %s: %v\nstderr: %s", strings.Join(args, " "), r.err, r.stderr)
	}
	return r.stdout
}

func decodeJSON[T any](t *testing.T, data string) T {
	t.Helper()
	var value T
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		t.Fatalf("decoding %q: %v", data, err)
	}
	return value
}

func findResource(t *testing.T, report deployReport, kind, id string) resourceReport {
	t.Helper()
	for _, entry := range report.Resources {
		if entry.Kind == kind && entry.ResourceID == id {
			return entry
		}
	}
	t.Fatalf("report has no %s %q: %+v", kind, id, report.Resources)
	return resourceReport{}
}

func TestDeployRecordsVersionsAndContent(t *testing.T) {
	configPath := writeNodeConfig(t, t.TempDir(), 1)
	files := writeResources(t,
		"order.bpmn", orderBpmn,
		"order.form", orderForm,
		"pricing.dmn", pricingDmn,
		"cleanup.rpa", cleanupRpa,
	)

	args := append([]string{"deploy", "--config", configPath, "--json", "--version-tag", "v1",
		"--id", "order.form=order-form", "--decision", "pricing.dmn=discount:Discount"}, files...)
	report := decodeJSON[deployReport](t, mustExecute(t, args...))

	if report.Outcome != "created" || !report.Applied {
		t.Fatalf("outcome=%s applied=%v", report.Outcome, report.Applied)
	}
	if keygen.PartitionOf(report.DeploymentKey) != 1 {
		t.Errorf("deployment key %d not minted by partition 1", report.DeploymentKey)
	}
	if len(report.Resources) != 5 {
		t.Fatalf("expected 5 resources (process, drg, decision, form, rpa), got %+v", report.Resources)
	}
	for _, entry := range report.Resources {
		if entry.Version != 1 || entry.Duplicate || entry.VersionTag != "v1" {
			t.Errorf("unexpected first deployment of %s %s: %+v", entry.Kind, entry.ResourceID, entry)
		}
	}
	decision := findResource(t, report, "decision", "discount")
	if decision.ResourceName != "pricing.dmn" {
		t.Errorf("decision resource name = %q, want pricing.dmn", decision.ResourceName)
	}
	findResource(t, report, "form", "order-form")

	history := decodeJSON[[]versionReport](t, mustExecute(t, "history", "--config", configPath, "--json", "process", "order"))
	if len(history) != 1 || history[0].DeploymentKey != report.DeploymentKey {
		t.Errorf("history = %+v, want one version of deployment %d", history, report.DeploymentKey)
	}

	process := findResource(t, report, "process", "order")
	stored := mustExecute(t, "show", "resource", "--config", configPath, "process", fmt.Sprint(process.Key))
	if stored != orderBpmn {
		t.Errorf("stored process = %q, want %q", stored, orderBpmn)
	}
	rpa := findResource(t, report, "rpa", "cleanup")
	if script := mustExecute(t, "show", "resource", "--config", configPath, "rpa", fmt.Sprint(rpa.Key)); script != cleanupRpa {
		t.Errorf("stored script = %q, want %q", script, cleanupRpa)
	}

	applied := mustExecute(t, "show", "deployment", "--config", configPath, fmt.Sprint(report.DeploymentKey))
	if !strings.Contains(applied, `"processesMetadata"`) || !strings.Contains(applied, fmt.Sprint(report.DeploymentKey)) {
		t.Errorf("show deployment output:\n%s", applied)
	}
}

func TestRedeployIsDuplicatesOnly(t *testing.T) {
	configPath := writeNodeConfig(t, t.TempDir(), 1)
	files := writeResources(t, "order.bpmn", orderBpmn, "order.form", orderForm)

	first := decodeJSON[deployReport](t, mustExecute(t, append([]string{"deploy", "-c", configPath, "--json"}, files...)...))
	second := decodeJSON[deployReport](t, mustExecute(t, append([]string{"deploy", "-c", configPath, "--json"}, files...)...))

	if second.Outcome != "duplicates-only" || second.Applied {
		t.Fatalf("second deploy: outcome=%s applied=%v", second.Outcome, second.Applied)
	}
	if second.DeploymentKey != -1 {
		t.Errorf("duplicates-only deployment got key %d", second.DeploymentKey)
	}
	for i, entry := range second.Resources {
		if !entry.Duplicate || entry.Key != first.Resources[i].Key || entry.Version != 1 {
			t.Errorf("resource %d: %+v, want duplicate of %+v", i, entry, first.Resources[i])
		}
	}

	text := mustExecute(t, append([]string{"deploy", "-c", configPath}, files...)...)
	if !strings.Contains(text, "nothing to deploy") {
		t.Errorf("text output for a duplicate deployment:\n%s", text)
	}
}

func TestChangedResourceGetsNextVersion(t *testing.T) {
	configPath := writeNodeConfig(t, t.TempDir(), 1)
	original := writeResources(t, "order.bpmn", orderBpmn, "order.form", orderForm)
	changed := writeResources(t, "order.bpmn", orderBpmnV2, "order.form", orderForm)

	mustExecute(t, append([]string{"deploy", "-c", configPath, "--version-tag", "v1"}, original...)...)
	report := decodeJSON[deployReport](t, mustExecute(t,
		append([]string{"deploy", "-c", configPath, "--json", "--version-tag", "v2"}, changed...)...))

	if process := findResource(t, report, "process", "order"); process.Version != 2 || process.Duplicate {
		t.Errorf("changed process: %+v", process)
	}
	if form := findResource(t, report, "form", "order"); form.Version != 1 || !form.Duplicate {
		t.Errorf("unchanged form: %+v", form)
	}

	tagged := decodeJSON[[]versionReport](t, mustExecute(t, "history", "-c", configPath, "--json", "--tag", "v1", "process", "order"))
	if len(tagged) != 1 || tagged[0].Version != 1 {
		t.Errorf("--tag v1 = %+v", tagged)
	}
	previous := decodeJSON[[]versionReport](t, mustExecute(t, "history", "-c", configPath, "--json", "--before", "2", "process", "order"))
	if len(previous) != 1 || previous[0].Version != 1 {
		t.Errorf("--before 2 = %+v", previous)
	}
	latest := decodeJSON[[]versionReport](t, mustExecute(t, "history", "-c", configPath, "--json", "--latest", "process", "order"))
	if len(latest) != 1 || latest[0].Version != 2 || latest[0].DeploymentKey != report.DeploymentKey {
		t.Errorf("--latest = %+v", latest)
	}
	byDeployment := decodeJSON[[]versionReport](t, mustExecute(t, "history", "-c", configPath, "--json",
		"--deployment", fmt.Sprint(report.DeploymentKey), "process", "order"))
	if len(byDeployment) != 1 || byDeployment[0].Version != 2 {
		t.Errorf("--deployment = %+v", byDeployment)
	}
}

func TestApplyOnAnotherPartition(t *testing.T) {
	leader := writeNodeConfig(t, t.TempDir(), 1)
	follower := writeNodeConfig(t, t.TempDir(), 2)
	aggregate := filepath.Join(t.TempDir(), "deployment.cbor")
	files := writeResources(t, "order.bpmn", orderBpmn, "pricing.dmn", pricingDmn)

	report := decodeJSON[deployReport](t, mustExecute(t, append([]string{"deploy", "-c", leader, "--json",
		"--no-apply", "--output", aggregate, "--decision", "pricing.dmn=discount"}, files...)...))
	if report.Applied || report.Output != aggregate {
		t.Fatalf("deploy --no-apply: %+v", report)
	}

	applied := decodeJSON[applyReport](t, mustExecute(t, "apply", "-c", follower, "--json", aggregate))
	if applied.DuplicatesOnly || applied.DeploymentKey != report.DeploymentKey {
		t.Fatalf("apply: %+v", applied)
	}
	if len(applied.Persisted) != 3 {
		t.Errorf("expected process, drg and decision persisted, got %+v", applied.Persisted)
	}

	// The follower keeps the leader's keys.
	process := findResource(t, report, "process", "order")
	history := decodeJSON[[]versionReport](t, mustExecute(t, "history", "-c", follower, "--json", "process", "order"))
	if len(history) != 1 || history[0].Key != process.Key {
		t.Errorf("follower history = %+v, want key %d", history, process.Key)
	}
	if stored := mustExecute(t, "show", "resource", "-c", follower, "process", fmt.Sprint(process.Key)); stored != orderBpmn {
		t.Errorf("follower content = %q", stored)
	}

	// Keys applied from partition 1 do not move partition 2's
	// generator.
	own := writeResources(t, "invoice.bpmn", `<definitions><process id="invoice"/></definitions>`)
	local := decodeJSON[deployReport](t, mustExecute(t, append([]string{"deploy", "-c", follower, "--json"}, own...)...))
	if keygen.PartitionOf(local.DeploymentKey) != 2 || keygen.PartitionOf(local.Resources[0].Key) != 2 {
		t.Errorf("follower minted keys outside its partition: %+v", local)
	}
}

func TestApplyDuplicatesOnlyAggregate(t *testing.T) {
	configPath := writeNodeConfig(t, t.TempDir(), 1)
	aggregate := filepath.Join(t.TempDir(), "deployment.cbor")
	files := writeResources(t, "order.bpmn", orderBpmn)

	mustExecute(t, append([]string{"deploy", "-c", configPath}, files...)...)
	mustExecute(t, append([]string{"deploy", "-c", configPath, "--output", aggregate}, files...)...)

	output := mustExecute(t, "apply", "-c", configPath, aggregate)
	if !strings.Contains(output, "duplicates only") {
		t.Errorf("apply output: %q", output)
	}
}

func TestApplyReadsHexFromStdin(t *testing.T) {
	leader := writeNodeConfig(t, t.TempDir(), 1)
	follower := writeNodeConfig(t, t.TempDir(), 2)
	aggregate := filepath.Join(t.TempDir(), "deployment.cbor")
	files := writeResources(t, "order.form", orderForm)
	mustExecute(t, append([]string{"deploy", "-c", leader, "--no-apply", "-o", aggregate}, files...)...)

	encoded, err := os.ReadFile(aggregate)
	if err != nil {
		t.Fatal(err)
	}
	r := execute(t, hex.EncodeToString(encoded)+"\n", "apply", "-c", follower, "--hex", "--json")
	if r.err != nil {
		t.Fatalf("apply --hex: %v (%s)", r.err, r.stderr)
	}
	if applied := decodeJSON[applyReport](t, r.stdout); len(applied.Persisted) != 1 {
		t.Errorf("apply --hex persisted %+v", applied.Persisted)
	}
}

func TestHistoryWithoutMatchExitsOne(t *testing.T) {
	configPath := writeNodeConfig(t, t.TempDir(), 1)
	r := execute(t, "", "history", "-c", configPath, "process", "missing")

	var exitError *cli.ExitError
	if !errors.As(r.err, &exitError) || exitError.Code != 1 {
		t.Fatalf("err = %v, want exit code 1", r.err)
	}
	if !strings.Contains(r.stderr, "no matching versions") {
		t.Errorf("stderr = %q", r.stderr)
	}
}

func TestDeployValidation(t *testing.T) {
	configPath := writeNodeConfig(t, t.TempDir(), 1)
	files := writeResources(t, "order.bpmn", orderBpmn)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no files", []string{"deploy", "-c", configPath}, "at least one resource file"},
		{"decision on a process", []string{"deploy", "-c", configPath, "--decision", "order.bpmn=d", files[0]}, "not a DMN resource"},
		{"decision for a missing file", []string{"deploy", "-c", configPath, "--decision", "other.dmn=d", files[0]}, "not being deployed"},
		{"malformed id", []string{"deploy", "-c", configPath, "--id", "order.bpmn", files[0]}, "want FILE=VALUE"},
		{"missing file", []string{"deploy", "-c", configPath, filepath.Join(t.TempDir(), "absent.bpmn")}, "absent.bpmn"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := execute(t, "", test.args...)
			if r.err == nil || !strings.Contains(r.err.Error(), test.want) {
				t.Errorf("err = %v, want it to mention %q", r.err, test.want)
			}
		})
	}
}

func TestCommandsRequireConfig(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	files := writeResources(t, "order.bpmn", orderBpmn)
	r := execute(t, "", "deploy", files[0])
	if r.err == nil || !strings.Contains(r.err.Error(), config.EnvVar) {
		t.Errorf("err = %v, want it to name %s", r.err, config.EnvVar)
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv(config.EnvVar, writeNodeConfig(t, t.TempDir(), 3))
	files := writeResources(t, "order.bpmn", orderBpmn)
	report := decodeJSON[deployReport](t, mustExecute(t, "deploy", "--json", files[0]))
	if keygen.PartitionOf(report.DeploymentKey) != 3 {
		t.Errorf("deployment key %d not minted by partition 3", report.DeploymentKey)
	}
}

func TestInspect(t *testing.T) {
	configPath := writeNodeConfig(t, t.TempDir(), 1)
	aggregate := filepath.Join(t.TempDir(), "deployment.cbor")
	files := writeResources(t, "order.bpmn", orderBpmn)
	mustExecute(t, append([]string{"deploy", "-c", configPath, "--no-apply", "-o", aggregate}, files...)...)

	decoded := decodeJSON[map[string]any](t, mustExecute(t, "inspect", aggregate))
	processes, ok := decoded["processesMetadata"].([]any)
	if !ok || len(processes) != 1 {
		t.Fatalf("processesMetadata = %v", decoded["processesMetadata"])
	}
	if resources, ok := decoded["resources"].([]any); !ok || len(resources) != 1 {
		t.Errorf("resources = %v", decoded["resources"])
	}

	diagnostic := mustExecute(t, "inspect", "--diag", aggregate)
	if !strings.Contains(diagnostic, `"processesMetadata"`) {
		t.Errorf("diagnostic notation lacks property names:\n%s", diagnostic)
	}

	encoded, err := os.ReadFile(aggregate)
	if err != nil {
		t.Fatal(err)
	}
	r := execute(t, hex.EncodeToString(encoded), "inspect", "--hex")
	if r.err != nil || !strings.Contains(r.stdout, `"processesMetadata"`) {
		t.Errorf("inspect --hex: err=%v output=%s", r.err, r.stdout)
	}
}

func TestInspectRejectsMismatchedKind(t *testing.T) {
	tests := []struct {
		kind    string
		content bool
	}{
		{"deployment", true},
		{"workflow", false},
		{"decision", true},
	}
	for _, test := range tests {
		if _, err := newInspectTarget(test.kind, test.content); err == nil {
			t.Errorf("newInspectTarget(%q, %v) succeeded", test.kind, test.content)
		}
	}
	if _, err := newInspectTarget("form", true); err != nil {
		t.Errorf("newInspectTarget(form, content): %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	if text := mustExecute(t, "version"); !strings.HasPrefix(text, "deployctl ") {
		t.Errorf("version output = %q", text)
	}
	build := decodeJSON[map[string]any](t, mustExecute(t, "version", "--json", "--checksum", "sha256"))
	if build["version"] == "" || build["go"] == nil {
		t.Errorf("version --json = %v", build)
	}
}
