// Package logging provides structured logging utilities for the core dump agent.
//
// # Overview
//
// This package wraps the standard library slog package with agent defaults so
// that every component logs the same way. Records are JSON, written to stderr,
// and carry the module and version attributes.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: detailed diagnostic information with source location
//   - INFO: general informational messages (default)
//   - WARN/WARNING: potentially problematic situations
//   - ERROR: failures requiring attention
//
// # Usage
//
// Setting the default logger early in main:
//
//	logging.SetDefaultStructuredLoggerWithLevel("core-dump-agent", version, "info")
//	slog.Info("harvest pass complete", "uploaded", 3)
//
// When no explicit level is available, SetDefaultStructuredLogger reads the
// LOG_LEVEL environment variable:
//
//	LOG_LEVEL=debug core-dump-agent
//
// # Output Format
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "uploaded core dump",
//	    "module": "core-dump-agent",
//	    "version": "v0.4.0",
//	    "key": "core.123"
//	}
//
// Debug logs additionally include a "source" object with function, file and line.
package logging
