package mcp

import "log"

// logger is nil until main installs one; stdout carries the MCP protocol, so
// all diagnostics go to a file.
var logger *log.Logger

// SetLogger installs the package logger.
func SetLogger(l *log.Logger) {
	logger = l
}

// Log writes a diagnostic line when a logger is installed; otherwise it is a
// no-op.
func Log(format string, args ...any) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
