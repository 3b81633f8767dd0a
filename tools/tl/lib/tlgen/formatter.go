// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tlgen

import (
	"bytes"
	"fmt"
	"os/exec"
)

// Formatter formats generated source.
type Formatter interface {
	Format(source []byte) ([]byte, error)
}

// IdentityFormatter returns its input unchanged.
type IdentityFormatter struct{}

func (IdentityFormatter) Format(source []byte) ([]byte, error) {
	return source, nil
}

type externalFormatter struct {
	path      string
	args      []string
	sizeLimit int
}

// NewFormatter returns a formatter that pipes source through the program at
// path. An empty path disables formatting. Sources larger than sizeLimit
// bytes (if positive) are left as they are.
func NewFormatter(path string, sizeLimit int, args ...string) Formatter {
	if path == "" {
		return IdentityFormatter{}
	}
	return externalFormatter{path: path, args: args, sizeLimit: sizeLimit}
}

func (f externalFormatter) Format(source []byte) ([]byte, error) {
	if f.sizeLimit > 0 && len(source) > f.sizeLimit {
		return source, nil
	}
	cmd := exec.Command(f.path, f.args...)
	cmd.Stdin = bytes.NewReader(source)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %v: %s", f.path, err, stderr.String())
	}
	return stdout.Bytes(), nil
}
