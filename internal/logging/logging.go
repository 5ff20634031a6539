// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logging configures the command's structured logger.
package logging

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel is used when the requested level is empty or invalid.
const DefaultLevel = zapcore.InfoLevel

// New returns a console logger writing to w at the named level
// (for example "debug" or "WARN"). An unparseable level falls back to
// DefaultLevel, and the returned error reports it.
func New(w io.Writer, level string) (*zap.SugaredLogger, error) {
	lvl := zap.NewAtomicLevelAt(DefaultLevel)
	var err error
	if level != "" {
		parsed, perr := zap.ParseAtomicLevel(strings.ToLower(level))
		if perr != nil {
			err = fmt.Errorf("invalid log level %q, using %v", level, DefaultLevel)
		} else {
			lvl.SetLevel(parsed.Level())
		}
	}
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:     "M",
		LevelKey:       "L",
		TimeKey:        "T",
		NameKey:        "N",
		CallerKey:      zapcore.OmitKey,
		FunctionKey:    zapcore.OmitKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), lvl)
	return zap.New(core).Sugar(), err
}

// Warnf adapts l to the Warn callbacks of the benchseries package,
// which pass messages ending in a newline.
func Warnf(l *zap.SugaredLogger) func(format string, args ...interface{}) {
	return func(format string, args ...interface{}) {
		l.Warn(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
	}
}
