// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/google/subcommands"
	"github.com/pkg/errors"

	"github.com/VKCOM/kphp-sub000/logger"
	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tl2cpp"
	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"
)

type GenerateCommand struct {
	schema        string
	out           string
	config        string
	genSubdir     string
	clangFormat   string
	extraBuiltins string
	watch         bool
}

func (*GenerateCommand) Name() string {
	return "generate"
}

func (*GenerateCommand) Usage() string {
	return "generate -schema <file.tlo> -out <dir> [flags]\n"
}

func (*GenerateCommand) Synopsis() string {
	return "generates C++ store and fetch code for a schema"
}

func (cmd *GenerateCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.schema, "schema", "", "path to the compiled schema")
	f.StringVar(&cmd.out, "out", "", "output root directory")
	f.StringVar(&cmd.config, "config", "", "optional YAML configuration file")
	f.StringVar(&cmd.genSubdir, "gen-subdir", "", "subdirectory of the output root for generated files")
	f.StringVar(&cmd.clangFormat, "clang-format", "", "path to clang-format, if output should be formatted")
	f.StringVar(&cmd.extraBuiltins, "extra-builtins", "", "comma separated type names provided by the runtime")
	f.BoolVar(&cmd.watch, "watch", false, "regenerate whenever the schema changes")
}

// loadConfig reads the configuration file, if any, and applies flag
// overrides on top of it.
func (cmd *GenerateCommand) loadConfig() (tl2cpp.Config, error) {
	cfg := tl2cpp.DefaultConfig()
	if cmd.config != "" {
		var err error
		if cfg, err = tl2cpp.LoadConfig(cmd.config); err != nil {
			return cfg, err
		}
	}
	if cmd.genSubdir != "" {
		cfg.GenSubdir = cmd.genSubdir
	}
	if cmd.clangFormat != "" {
		cfg.ClangFormat = cmd.clangFormat
	}
	if cmd.extraBuiltins != "" {
		cfg.ExtraBuiltins = append(cfg.ExtraBuiltins, strings.Split(cmd.extraBuiltins, ",")...)
	}
	return cfg, cfg.Validate()
}

func (cmd *GenerateCommand) generate(ctx context.Context, cfg tl2cpp.Config) error {
	s, err := tlo.ParseFile(cmd.schema)
	if err != nil {
		return err
	}
	return tl2cpp.Run(ctx, s, cfg, cmd.out)
}

func (cmd *GenerateCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if cmd.schema == "" || cmd.out == "" {
		logger.Errorf(ctx, "both -schema and -out are required")
		return subcommands.ExitUsageError
	}
	cfg, err := cmd.loadConfig()
	if err != nil {
		logger.Errorf(ctx, "%v", err)
		return subcommands.ExitUsageError
	}
	if err := cmd.generate(ctx, cfg); err != nil {
		logger.Errorf(ctx, "%v", err)
		if !cmd.watch {
			return subcommands.ExitFailure
		}
	}
	if w := logger.FromContext(ctx); w != nil && w.Warnings() > 0 {
		logger.Infof(ctx, "%d warnings", w.Warnings())
	}
	if !cmd.watch {
		return subcommands.ExitSuccess
	}
	if err := cmd.watchSchema(ctx, cfg); err != nil {
		logger.Errorf(ctx, "%v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// watchSchema regenerates on every change of the schema file until ctx is
// done. The directory is watched so that schemas replaced by rename are
// still seen.
func (cmd *GenerateCommand) watchSchema(ctx context.Context, cfg tl2cpp.Config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	schema := filepath.Clean(cmd.schema)
	if err := watcher.Add(filepath.Dir(schema)); err != nil {
		return err
	}
	logger.Infof(ctx, "watching %s", schema)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if filepath.Clean(event.Name) != schema || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Debugf(ctx, "%s: %s", event.Name, event.Op)
			if err := cmd.generate(ctx, cfg); err != nil {
				logger.Errorf(ctx, "%v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			logger.Warningf(ctx, "watching %s: %v", schema, err)
		}
	}
}
