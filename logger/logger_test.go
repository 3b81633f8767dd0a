// Copyright 2018 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logger

import (
	"bytes"
	"context"
	goLog "log"
	"strings"
	"testing"

	"github.com/VKCOM/kphp-sub000/color"
)

func TestWithContext(t *testing.T) {
	logger := NewLogger(DebugLevel, color.NewColor(color.ColorNever), nil, nil, "")
	ctx := context.Background()
	if v := FromContext(ctx); v != nil {
		t.Fatalf("Default context should not have a logger. Expected: \nnil\n but got: \n%+v ", v)
	}
	ctx = WithLogger(ctx, logger)
	if v := FromContext(ctx); v != logger {
		t.Fatalf("Updated context should carry the logger, but got %+v", v)
	}
}

func TestNewLogger(t *testing.T) {
	prefix := "testprefix "

	logger := NewLogger(InfoLevel, color.NewColor(color.ColorAuto), nil, nil, prefix)
	logFlags, errFlags := logger.goLogger.Flags(), logger.goErrorLogger.Flags()

	if logFlags != goLog.LstdFlags || errFlags != goLog.LstdFlags {
		t.Fatalf("New loggers should have the proper flags set for both standard and error logging. Expected: \n%+v and %+v\n but got: \n%+v and %+v", goLog.LstdFlags, goLog.LstdFlags, logFlags, errFlags)
	}

	logPrefix := logger.prefix
	if logPrefix != prefix {
		t.Fatalf("New loggers should use the specified prefix on creation. Expected: \n%+v\n but got: \n%+v", prefix, logPrefix)
	}
}

func TestWarningsAreCounted(t *testing.T) {
	var out bytes.Buffer
	logger := NewLogger(ErrorLevel, color.NewColor(color.ColorNever), &out, &out, "")
	ctx := WithLogger(context.Background(), logger)
	Warningf(ctx, "first")
	Warningf(ctx, "second")
	Infof(ctx, "not a warning")
	if got := logger.Warnings(); got != 2 {
		t.Errorf("Warnings() = %d, want 2", got)
	}
	if out.Len() != 0 {
		t.Errorf("messages below the level were printed: %q", out.String())
	}

	logger.LoggerLevel = WarningLevel
	logger.SetFlags(0)
	Warningf(ctx, "shown")
	if got := out.String(); !strings.Contains(got, "WARN: shown") {
		t.Errorf("warning not printed, got %q", got)
	}
}

func TestLogLevelFlag(t *testing.T) {
	var l LogLevel
	for _, name := range []string{"no", "fatal", "error", "warning", "info", "debug", "trace"} {
		if err := l.Set(name); err != nil {
			t.Fatal(err)
		}
		if got := l.String(); got != name {
			t.Errorf("Set(%q) then String() = %q", name, got)
		}
	}
	if err := l.Set("loud"); err == nil {
		t.Errorf("Set accepted an unknown level")
	}
}
