// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/camunda/camunda-sub024/cmd/deployctl/cli"
	"github.com/camunda/camunda-sub024/lib/codec"
	"github.com/camunda/camunda-sub024/lib/deployment"
	"github.com/camunda/camunda-sub024/lib/resource"
)

type inspectParams struct {
	kind    string
	content bool
	diag    bool
	hex     bool
}

// jsonRecord is a decodable record that renders itself as JSON.
type jsonRecord interface {
	Wrap(buf []byte) error
	MarshalJSON() ([]byte, error)
}

func inspectCommand(streams Streams) *cli.Command {
	var params inspectParams
	return &cli.Command{
		Name:    "inspect",
		Summary: "Decode an encoded deployment or resource record",
		Description: `Decode a record and print it as JSON, or as CBOR diagnostic notation
with --diag.

--kind selects the record type: "deployment" (the default) for an
aggregate, or a resource kind (process, decision,
decision-requirements, form, rpa, resource) for a metadata record.
Add --content to read a resource kind's content record instead.`,
		Usage: "deployctl inspect [flags] [FILE]",
		Examples: []cli.Example{
			{
				Description: "Show an aggregate written by deploy --output",
				Command:     "deployctl inspect deployment.cbor",
			},
			{
				Description: "Show a hex-encoded process content record in diagnostic notation",
				Command:     "echo 'a2 ...' | deployctl inspect --hex --diag",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flagSet.StringVar(&params.kind, "kind", "deployment", "record type")
			flagSet.BoolVar(&params.content, "content", false, "decode a content record rather than metadata")
			flagSet.BoolVar(&params.diag, "diag", false, "print CBOR diagnostic notation")
			flagSet.BoolVar(&params.hex, "hex", false, "input is hex-encoded")
			return flagSet
		},
		Run: func(_ context.Context, args []string) error {
			data, err := readInput(args, streams.In, params.hex)
			if err != nil {
				return err
			}
			if params.diag {
				return writeDiagnostic(streams.Out, data)
			}
			target, err := newInspectTarget(params.kind, params.content)
			if err != nil {
				return err
			}
			if err := target.Wrap(data); err != nil {
				return err
			}
			return writeRecordJSON(streams.Out, target)
		},
	}
}

func newInspectTarget(kindName string, content bool) (jsonRecord, error) {
	if kindName == "deployment" {
		if content {
			return nil, fmt.Errorf("--content does not apply to deployments")
		}
		return deployment.New(), nil
	}
	kind, err := resource.ParseKind(kindName)
	if err != nil {
		return nil, err
	}
	if content {
		return resource.NewContent(kind)
	}
	return resource.NewMetadata(kind)
}

// writeDiagnostic prints one line of diagnostic notation per item, so
// CBOR sequences are shown whole.
func writeDiagnostic(w io.Writer, data []byte) error {
	offset := 0
	for len(data) > 0 {
		notation, rest, err := codec.DiagnoseFirst(data)
		if err != nil {
			return fmt.Errorf("item at offset %d: %w", offset, err)
		}
		fmt.Fprintln(w, notation)
		offset += len(data) - len(rest)
		data = rest
	}
	return nil
}

func writeRecordJSON(w io.Writer, target jsonRecord) error {
	compact, err := target.MarshalJSON()
	if err != nil {
		return err
	}
	var indented bytes.Buffer
	if err := json.Indent(&indented, compact, "", "  "); err != nil {
		return err
	}
	indented.WriteByte('\n')
	_, err = w.Write(indented.Bytes())
	return err
}
