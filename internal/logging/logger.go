package logging

import (
	"fmt"
	"log"
	"os"
)

var levelRank = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

// Logger provides structured, leveled logging for the pipeline.
type Logger struct {
	prefix   string
	minLevel int
	logger   *log.Logger
}

// NewLogger creates a logger with a prefix, logging everything at info and above.
func NewLogger(prefix string) *Logger {
	return NewLoggerWithLevel(prefix, "info")
}

// NewLoggerWithLevel creates a logger with a prefix and a minimum level
// (debug|info|warn|error); unknown levels default to info.
func NewLoggerWithLevel(prefix, level string) *Logger {
	rank, ok := levelRank[level]
	if !ok {
		rank = levelRank["info"]
	}
	return &Logger{
		prefix:   prefix,
		minLevel: rank,
		logger:   log.New(os.Stdout, fmt.Sprintf("[%s] ", prefix), log.LstdFlags),
	}
}

// WithJob returns a logger scoped to a single file's correlation id, matching
// the "[Job %s]" per-file log-line convention the pipeline uses throughout.
func (l *Logger) WithJob(jobID string) *Logger {
	return &Logger{
		prefix:   fmt.Sprintf("%s Job %s", l.prefix, jobID),
		minLevel: l.minLevel,
		logger:   log.New(os.Stdout, fmt.Sprintf("[%s] [Job %s] ", l.prefix, jobID), log.LstdFlags),
	}
}

// Info logs an informational message with key-value pairs.
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.logWithKV("INFO", levelRank["info"], msg, keysAndValues...)
}

// Warn logs a warning message with key-value pairs.
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.logWithKV("WARN", levelRank["warn"], msg, keysAndValues...)
}

// Error logs an error message with key-value pairs.
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.logWithKV("ERROR", levelRank["error"], msg, keysAndValues...)
}

// Debug logs a debug message with key-value pairs.
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.logWithKV("DEBUG", levelRank["debug"], msg, keysAndValues...)
}

func (l *Logger) logWithKV(level string, rank int, msg string, keysAndValues ...interface{}) {
	if rank < l.minLevel {
		return
	}
	kvStr := ""
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			kvStr += fmt.Sprintf(" %v=%v", keysAndValues[i], keysAndValues[i+1])
		}
	}
	l.logger.Printf("[%s] %s%s", level, msg, kvStr)
}
