// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package tl2cpp compiles a TL schema into C++ store and fetch code.
package tl2cpp

import (
	"context"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/VKCOM/kphp-sub000/logger"
	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlgen"
	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"
)

// formatterSizeLimit is the largest file passed to clang-format.
const formatterSizeLimit = 4 << 20

var utilityFuncs = template.FuncMap{
	"TemplateList": templateList,
	"Formals":      formalList,
	"MemberInits":  memberInits,
	"CppString":    cppString,
}

func memberInits(members []Formal) string {
	var parts []string
	for _, m := range members {
		if m.Type == "int64_t" {
			parts = append(parts, m.Name+"("+m.Name+")")
		} else {
			parts = append(parts, m.Name+"(std::move("+m.Name+"))")
		}
	}
	return strings.Join(parts, ", ")
}

type Generator struct {
	gen *tlgen.Generator
}

func NewGenerator(formatter tlgen.Formatter) *Generator {
	return &Generator{
		gen: tlgen.NewGenerator("TL2CPPTemplates", formatter, utilityFuncs, []string{
			structTemplate,
			headerTemplate,
			sourceTemplate,
			storersTableTemplate,
		}),
	}
}

// NewFormatter returns the formatter selected by cfg.
func NewFormatter(cfg Config) tlgen.Formatter {
	return tlgen.NewFormatter(cfg.ClangFormat, formatterSizeLimit, "--style=file")
}

type headerData struct {
	RuntimeHeader string
	Includes      []string
	Decls         []*Decl
}

type sourceData struct {
	Header string
	Decls  []*Decl
}

type storersTableData struct {
	RuntimeHeader string
	Includes      []string
	Entries       []DispatchEntry
}

// Generate renders every planned file and the dispatch table. Nothing is
// written to disk.
func (g *Generator) Generate(c *Context) (*tlgen.Output, error) {
	c.Compile()
	out := tlgen.NewOutput()
	for _, f := range c.Files() {
		var (
			name string
			data interface{}
		)
		switch f.Kind {
		case Header:
			name, data = "Header", headerData{RuntimeHeader: c.Config.RuntimeHeader, Includes: f.Deps(), Decls: f.Decls}
		case Source:
			name, data = "Source", sourceData{Header: c.filePath(f.Namespace, Header), Decls: f.Decls}
		}
		contents, err := g.gen.Render(name, data)
		if err != nil {
			return nil, errors.Wrapf(err, "rendering %s", f.Path)
		}
		if err := out.Add(f.Path, contents); err != nil {
			return nil, err
		}
	}

	contents, err := g.gen.Render("StorersTable", storersTableData{
		RuntimeHeader: c.Config.RuntimeHeader,
		Includes:      c.Headers(),
		Entries:       DispatchTable(c.Classifier),
	})
	if err != nil {
		return nil, errors.Wrap(err, "rendering dispatch table")
	}
	if err := out.Add(c.StorersTablePath(), contents); err != nil {
		return nil, err
	}
	return out, nil
}

// Run compiles s with cfg and writes the result under outDir. Warnings and
// coverage are logged through ctx.
func Run(ctx context.Context, s *tlo.Schema, cfg Config, outDir string) error {
	c := NewContext(s, cfg)
	out, err := NewGenerator(NewFormatter(cfg)).Generate(c)
	if err != nil {
		return err
	}
	for _, w := range c.Warnings {
		logger.Warningf(ctx, "%s", w)
	}
	cov := c.Classifier.Coverage()
	logger.Infof(ctx, "generated %d of %d types and %d of %d functions (%.1f%%)",
		cov.TrivialTypes, cov.Types, cov.TrivialFunctions, cov.Functions, cov.Percent())
	for _, name := range cov.Unsupported {
		logger.Debugf(ctx, "unsupported: %s", name)
	}
	if err := out.Flush(outDir); err != nil {
		return errors.Wrapf(err, "writing to %s", outDir)
	}
	logger.Debugf(ctx, "wrote %d files", len(out.Paths()))
	return nil
}
