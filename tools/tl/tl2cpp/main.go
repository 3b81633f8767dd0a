// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// tl2cpp compiles a binary TL schema into C++ store and fetch code.
package main

import (
	"context"
	"flag"
	"os"
	"syscall"

	"github.com/google/subcommands"

	"github.com/VKCOM/kphp-sub000/color"
	"github.com/VKCOM/kphp-sub000/command"
	"github.com/VKCOM/kphp-sub000/logger"
)

var (
	colors color.EnableColor
	level  logger.LogLevel
)

func init() {
	colors = color.ColorAuto
	level = logger.InfoLevel

	flag.Var(&colors, "color", "use color in output, can be never, auto, always")
	flag.Var(&level, "level", "output verbosity, can be fatal, error, warning, info, debug or trace")
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&GenerateCommand{}, "")
	subcommands.Register(&DumpCommand{}, "")
	subcommands.Register(&StatsCommand{}, "")

	flag.Parse()

	log := logger.NewLogger(level, color.NewColor(colors), os.Stdout, os.Stderr, "tl2cpp: ")
	ctx := logger.WithLogger(context.Background(), log)
	ctx = command.CancelOnSignals(ctx, syscall.SIGINT, syscall.SIGTERM)
	os.Exit(int(subcommands.Execute(ctx)))
}
