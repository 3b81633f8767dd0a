// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tlgen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Output is a set of rendered files, keyed by path relative to an output
// root. Nothing touches the disk until Flush.
type Output struct {
	files map[string][]byte
}

func NewOutput() *Output {
	return &Output{files: make(map[string][]byte)}
}

// Add records the contents of a file. Each path may be added once.
func (o *Output) Add(path string, contents []byte) error {
	if _, ok := o.files[path]; ok {
		return fmt.Errorf("%s generated twice", path)
	}
	o.files[path] = contents
	return nil
}

// Paths returns the recorded paths in sorted order.
func (o *Output) Paths() []string {
	paths := make([]string, 0, len(o.files))
	for p := range o.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// File returns the contents recorded for path.
func (o *Output) File(path string) ([]byte, bool) {
	b, ok := o.files[path]
	return b, ok
}

// Size returns the total number of bytes across all files.
func (o *Output) Size() int {
	n := 0
	for _, b := range o.files {
		n += len(b)
	}
	return n
}

// Flush writes every file under root. Files whose contents did not change
// are left untouched. All write failures are reported together, in path
// order.
func (o *Output) Flush(root string) error {
	paths := o.Paths()
	errs := make([]error, len(paths))
	var eg errgroup.Group
	for i, p := range paths {
		i, p := i, p
		eg.Go(func() error {
			errs[i] = WriteFileIfChanged(filepath.Join(root, p), o.files[p])
			return nil
		})
	}
	eg.Wait()
	return multierr.Combine(errs...)
}

// WriteFileIfChanged overwrites filename with contents unless the file
// already holds exactly those contents.
func WriteFileIfChanged(filename string, contents []byte) error {
	if current, err := os.ReadFile(filename); err == nil && bytes.Equal(current, contents) {
		return nil
	} else if err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o777); err != nil {
		return err
	}
	return os.WriteFile(filename, contents, 0o666)
}
