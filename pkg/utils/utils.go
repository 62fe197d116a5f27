package utils

import "fmt"

// Logger is the ambient logging seam threaded through the storage engine
// and tree facade. Debug is separate from Info because engine-level
// tracing (record offsets, commit boundaries) is far noisier than the
// tree-level operations callers actually care about.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

type SimpleLogger struct{}

func NewSimpleLogger() *SimpleLogger {
	return &SimpleLogger{}
}

func (l *SimpleLogger) Debug(msg string) { fmt.Println("DEBUG: " + msg) }
func (l *SimpleLogger) Info(msg string)  { fmt.Println("INFO: " + msg) }
func (l *SimpleLogger) Warn(msg string)  { fmt.Println("WARN: " + msg) }
func (l *SimpleLogger) Error(msg string) { fmt.Println("ERROR: " + msg) }

// NopLogger discards everything. Useful in tests that don't want stdout noise.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (l *NopLogger) Debug(string) {}
func (l *NopLogger) Info(string)  {}
func (l *NopLogger) Warn(string)  {}
func (l *NopLogger) Error(string) {}
