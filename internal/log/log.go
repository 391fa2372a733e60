// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

// Package log provides the logging facilities used by the census runtime.
package log

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Level specifies the logging verbosity.
type Level int

// Available logging levels.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger implementations are able to log given messages that the census
// runtime might output. Implementations must be safe for concurrent use.
type Logger interface {
	// Log prints the given message.
	Log(msg string)
}

var (
	mu             sync.RWMutex
	levelThreshold = LevelWarn
	logger         Logger = newDefaultLogger()
)

type defaultLogger struct {
	l *logrus.Logger
}

func newDefaultLogger() *defaultLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
	})
	// level filtering happens in this package; pass everything through
	l.SetLevel(logrus.TraceLevel)
	return &defaultLogger{l: l}
}

func (d *defaultLogger) Log(msg string) { d.l.Print(msg) }

// UseLogger sets l as the active logger.
func UseLogger(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// Current returns the active logger.
func Current() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLevel sets the given level as the minimum logging level.
func SetLevel(lvl Level) {
	mu.Lock()
	defer mu.Unlock()
	levelThreshold = lvl
}

// DebugEnabled reports whether debug logging is active. Use it to avoid
// computing expensive log arguments that would be discarded.
func DebugEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return levelThreshold <= LevelDebug
}

// Debug prints the given message if the level is LevelDebug.
func Debug(format string, a ...interface{}) {
	if !DebugEnabled() {
		return
	}
	printMsg(LevelDebug, format, a...)
}

// Info prints an informational message.
func Info(format string, a ...interface{}) {
	printMsg(LevelInfo, format, a...)
}

// Warn prints a warning message.
func Warn(format string, a ...interface{}) {
	printMsg(LevelWarn, format, a...)
}

var (
	errmu   sync.Mutex
	errseen = map[string]time.Time{}
	errrate = time.Second
)

// Error prints an error message. Identical messages are suppressed if they
// repeat within one second, so a hot loop cannot flood the logger.
func Error(format string, a ...interface{}) {
	key := format
	now := time.Now()
	errmu.Lock()
	last, ok := errseen[key]
	if ok && now.Sub(last) < errrate {
		errmu.Unlock()
		return
	}
	errseen[key] = now
	errmu.Unlock()
	printMsg(LevelError, format, a...)
}

func printMsg(lvl Level, format string, a ...interface{}) {
	mu.RLock()
	if lvl < levelThreshold {
		mu.RUnlock()
		return
	}
	l := logger
	mu.RUnlock()
	l.Log(fmt.Sprintf("census: %s: %s", lvl, fmt.Sprintf(format, a...)))
}
