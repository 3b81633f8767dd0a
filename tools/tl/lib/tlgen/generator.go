// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package tlgen renders generated sources from text templates and writes
// them out.
package tlgen

import (
	"bytes"
	"text/template"

	"github.com/pkg/errors"
)

type Generator struct {
	tmpls     *template.Template
	formatter Formatter
}

// NewGenerator parses the given template sources, which are expected to
// consist of {{ define }} blocks, into a single template set.
func NewGenerator(name string, formatter Formatter, funcs template.FuncMap, templates []string) *Generator {
	tmpls := template.New(name).Funcs(funcs)
	for _, t := range templates {
		template.Must(tmpls.Parse(t))
	}
	if formatter == nil {
		formatter = IdentityFormatter{}
	}
	return &Generator{tmpls: tmpls, formatter: formatter}
}

func (gen *Generator) ExecuteTemplate(tmpl string, data interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := gen.tmpls.ExecuteTemplate(buf, tmpl, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render executes a template and formats the result.
func (gen *Generator) Render(tmpl string, data interface{}) ([]byte, error) {
	generated, err := gen.ExecuteTemplate(tmpl, data)
	if err != nil {
		return nil, errors.Wrapf(err, "generating %s", tmpl)
	}
	formatted, err := gen.formatter.Format(generated)
	if err != nil {
		return nil, errors.Wrapf(err, "formatting %s", tmpl)
	}
	return formatted, nil
}
