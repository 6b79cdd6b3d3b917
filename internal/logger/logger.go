// Package logger provides the project's leveled logging, a thin wrapper
// over the standard library log package.
package logger

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// A Level gates which messages are emitted.
type Level int

const (
	LevelError Level = iota
	LevelInfo
	LevelDebug
)

var (
	mu           sync.Mutex
	currentLevel = LevelInfo
)

// SetLevel sets the global log level.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = l
}

// Setup directs log output to w. Useful for silencing progress output
// when stdout carries machine-readable data.
func Setup(w io.Writer) {
	log.SetOutput(w)
	log.SetFlags(log.Ldate | log.Ltime)
}

// Infof logs progress messages.
func Infof(format string, v ...interface{}) {
	if level() >= LevelInfo {
		output("INFO: "+format, v...)
	}
}

// Errorf logs failures.
func Errorf(format string, v ...interface{}) {
	if level() >= LevelError {
		output("ERROR: "+format, v...)
	}
}

// Debugf logs chatty diagnostics, off by default.
func Debugf(format string, v ...interface{}) {
	if level() >= LevelDebug {
		output("DEBUG: "+format, v...)
	}
}

func level() Level {
	mu.Lock()
	defer mu.Unlock()
	return currentLevel
}

func output(format string, v ...interface{}) {
	log.Output(3, fmt.Sprintf(format, v...))
}
