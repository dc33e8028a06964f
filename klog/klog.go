// Package klog implements level-filtered kernel logging over the console
// writer: a runtime level check ahead of each call, written with
// fmt.Fprintf over a plain io.Writer.
package klog

import (
	"fmt"
	"io"

	"github.com/achilleasa/riscv-sv39-kernel/console"
)

/// Level orders log severities from most to least verbose.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var (
	out = io.Writer(console.Writer{})
	min = LevelInfo
)

/// SetLevel changes the minimum level that reaches the console.
func SetLevel(l Level) { min = l }

func logf(l Level, prefix, format string, args...interface{}) {
	if l < min {
		return
	}
	fmt.Fprintf(out, prefix+format+"\n", args...)
}

func Tracef(format string, args...interface{}) { logf(LevelTrace, "[TRACE] ", format, args...) }
func Debugf(format string, args...interface{}) { logf(LevelDebug, "[DEBUG] ", format, args...) }
func Infof(format string, args...interface{}) { logf(LevelInfo, "[INFO] ", format, args...) }
func Warnf(format string, args...interface{}) { logf(LevelWarn, "[WARN] ", format, args...) }
func Errorf(format string, args...interface{}) { logf(LevelError, "[ERROR] ", format, args...) }
