// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/kr/pretty"
	"github.com/pkg/errors"

	"github.com/VKCOM/kphp-sub000/logger"
	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"
)

type DumpCommand struct {
	schema string
	name   string
}

func (*DumpCommand) Name() string {
	return "dump"
}

func (*DumpCommand) Usage() string {
	return "dump -schema <file.tlo> [-name <type or function>]\n"
}

func (*DumpCommand) Synopsis() string {
	return "prints the decoded schema model"
}

func (cmd *DumpCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.schema, "schema", "", "path to the compiled schema")
	f.StringVar(&cmd.name, "name", "", "only print the type or function with this name")
}

func (cmd *DumpCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if cmd.schema == "" {
		logger.Errorf(ctx, "-schema is required")
		return subcommands.ExitUsageError
	}
	s, err := tlo.ParseFile(cmd.schema)
	if err != nil {
		logger.Errorf(ctx, "%v", err)
		return subcommands.ExitFailure
	}
	if err := dump(os.Stdout, s, cmd.name); err != nil {
		logger.Errorf(ctx, "%v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func dump(w io.Writer, s *tlo.Schema, name string) error {
	if name == "" {
		fmt.Fprintf(w, "layout %s, date %d\n", s.Layout.Name, s.Date)
		for _, t := range s.Types {
			pretty.Fprintf(w, "%# v\n", t)
		}
		for _, f := range s.Functions {
			pretty.Fprintf(w, "%# v\n", f)
		}
		return nil
	}
	if t := s.TypeByName(name); t != nil {
		pretty.Fprintf(w, "%# v\n", t)
		return nil
	}
	if f := s.FunctionByName(name); f != nil {
		pretty.Fprintf(w, "%# v\n", f)
		return nil
	}
	return errors.Errorf("no type or function named %q", name)
}
