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
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"

	"github.com/VKCOM/kphp-sub000/logger"
	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"
	"github.com/VKCOM/kphp-sub000/tools/tl/lib/trivial"
)

type StatsCommand struct {
	schema        string
	extraBuiltins string
}

func (*StatsCommand) Name() string {
	return "stats"
}

func (*StatsCommand) Usage() string {
	return "stats -schema <file.tlo>\n"
}

func (*StatsCommand) Synopsis() string {
	return "prints schema size and code generation coverage"
}

func (cmd *StatsCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.schema, "schema", "", "path to the compiled schema")
	f.StringVar(&cmd.extraBuiltins, "extra-builtins", "", "comma separated type names provided by the runtime")
}

func (cmd *StatsCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if cmd.schema == "" {
		logger.Errorf(ctx, "-schema is required")
		return subcommands.ExitUsageError
	}
	data, err := os.ReadFile(cmd.schema)
	if err != nil {
		logger.Errorf(ctx, "%v", err)
		return subcommands.ExitFailure
	}
	s, err := tlo.Parse(data)
	if err != nil {
		logger.Errorf(ctx, "%s: %v", cmd.schema, err)
		return subcommands.ExitFailure
	}
	var extra []string
	if cmd.extraBuiltins != "" {
		extra = strings.Split(cmd.extraBuiltins, ",")
	}
	printStats(os.Stdout, s, uint64(len(data)), trivial.New(s, extra...))
	return subcommands.ExitSuccess
}

func printStats(w io.Writer, s *tlo.Schema, size uint64, c *trivial.Classifier) {
	cov := c.Coverage()
	fmt.Fprintf(w, "Schema size: %s (layout %s)\n", humanize.IBytes(size), s.Layout.Name)
	fmt.Fprintf(w, "Types: %s, constructors: %s, functions: %s, cells: %s\n",
		humanize.Comma(int64(len(s.Types))),
		humanize.Comma(int64(len(s.Constructors))),
		humanize.Comma(int64(len(s.Functions))),
		humanize.Comma(int64(len(s.Cells))))
	fmt.Fprintf(w, "Generated types: %d of %d\n", cov.TrivialTypes, cov.Types)
	fmt.Fprintf(w, "Generated functions: %d of %d (%d exported)\n",
		cov.TrivialFunctions, cov.Functions, len(c.ExportedFunctions()))
	fmt.Fprintf(w, "Coverage: %.1f%%\n", cov.Percent())
	if len(cov.Unsupported) > 0 {
		fmt.Fprintf(w, "Unsupported:\n")
		for _, name := range cov.Unsupported {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
}
