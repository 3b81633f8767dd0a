// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tl2cpp

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config controls where and how C++ sources are generated.
type Config struct {
	// GenSubdir is the directory, relative to the output root, that holds
	// every generated file.
	GenSubdir string `yaml:"gen_subdir"`
	// DefaultNamespace names the files of entities without a namespace.
	DefaultNamespace string `yaml:"default_namespace"`
	// RuntimeHeader is included by every generated header.
	RuntimeHeader string `yaml:"runtime_header"`
	// ExtraBuiltins are type names implemented by the runtime in addition
	// to the standard ones.
	ExtraBuiltins []string `yaml:"extra_builtins"`
	// ClangFormat is the path of a clang-format binary. Empty disables
	// formatting.
	ClangFormat string `yaml:"clang_format"`
	// StorersTable is the file name of the dispatch table source.
	StorersTable string `yaml:"storers_table"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		GenSubdir:        "tl",
		DefaultNamespace: "common",
		RuntimeHeader:    "runtime/tl/tl_builtins.h",
		StorersTable:     "tl_storers_table.cpp",
	}
}

// LoadConfig reads a YAML config file. Keys absent from the file keep their
// default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate checks that every required setting is present.
func (cfg Config) Validate() error {
	switch {
	case cfg.GenSubdir == "":
		return errors.New("gen_subdir must not be empty")
	case cfg.DefaultNamespace == "":
		return errors.New("default_namespace must not be empty")
	case cfg.StorersTable == "":
		return errors.New("storers_table must not be empty")
	}
	return nil
}
