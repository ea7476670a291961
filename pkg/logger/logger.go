package logger

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// Logger provides leveled logging. It is an injected capability: code
// that receives a nil or Nop logger keeps working, it just stays quiet.
type Logger struct {
	mu     sync.Mutex
	level  LogLevel
	out    io.Writer
	errOut io.Writer
	prefix string
}

// New creates a new logger instance
func New(out, errOut io.Writer, level LogLevel, prefix string) *Logger {
	return &Logger{
		level:  level,
		out:    out,
		errOut: errOut,
		prefix: prefix,
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return New(io.Discard, io.Discard, ERROR+1, "")
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetPrefix sets the logger prefix
func (l *Logger) SetPrefix(prefix string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prefix = prefix
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	var out io.Writer
	if level >= ERROR {
		out = l.errOut
	} else {
		out = l.out
	}

	msg := fmt.Sprintf(format, args...)
	prefix := l.prefix
	if prefix != "" {
		prefix += " "
	}

	log.New(out, "", 0).Printf("[%s] %s%s", levelNames[level], prefix, msg)
}
