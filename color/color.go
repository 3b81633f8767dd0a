// Copyright 2018 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package color paints the severity tags of log lines.
package color

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

const (
	escape = "\033["
	clear  = escape + "0m"
)

// Code is an ANSI foreground color.
type Code int

const (
	RedFg    Code = 31
	YellowFg Code = 33
	BlueFg   Code = 34
	CyanFg   Code = 36
)

// Color formats text in the colors a log level is tagged with.
type Color interface {
	Red(format string, a ...interface{}) string
	Yellow(format string, a ...interface{}) string
	Blue(format string, a ...interface{}) string
	Cyan(format string, a ...interface{}) string
	Enabled() bool
}

// palette emits escape sequences only when enabled.
type palette struct {
	enabled bool
}

func (p palette) paint(c Code, format string, a ...interface{}) string {
	s := fmt.Sprintf(format, a...)
	if !p.enabled {
		return s
	}
	return fmt.Sprintf("%s%dm%s%s", escape, c, s, clear)
}

func (p palette) Red(format string, a ...interface{}) string {
	return p.paint(RedFg, format, a...)
}

func (p palette) Yellow(format string, a ...interface{}) string {
	return p.paint(YellowFg, format, a...)
}

func (p palette) Blue(format string, a ...interface{}) string {
	return p.paint(BlueFg, format, a...)
}

func (p palette) Cyan(format string, a ...interface{}) string {
	return p.paint(CyanFg, format, a...)
}

func (p palette) Enabled() bool {
	return p.enabled
}

type EnableColor int

const (
	ColorNever EnableColor = iota
	ColorAuto
	ColorAlways
)

// isTerminal reports whether f can render escape sequences.
func isTerminal(f *os.File) bool {
	switch os.Getenv("TERM") {
	case "dumb", "":
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewColor returns a Color for the setting. ColorAuto colors only when both
// log streams are terminals.
func NewColor(enableColor EnableColor) Color {
	switch enableColor {
	case ColorAlways:
		return palette{enabled: true}
	case ColorAuto:
		return palette{enabled: isTerminal(os.Stdout) && isTerminal(os.Stderr)}
	}
	return palette{}
}

func (ec *EnableColor) String() string {
	switch *ec {
	case ColorNever:
		return "never"
	case ColorAuto:
		return "auto"
	case ColorAlways:
		return "always"
	}
	return ""
}

func (ec *EnableColor) Set(s string) error {
	switch s {
	case "never":
		*ec = ColorNever
	case "auto":
		*ec = ColorAuto
	case "always":
		*ec = ColorAlways
	default:
		return errors.Errorf("%s is not a valid color value", s)
	}
	return nil
}
