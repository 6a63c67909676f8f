// Package logging provides a structured logging system for nxharness with
// unified log handling and level filtering.
//
// This package implements a logging system built on Go's standard slog package,
// providing consistent logging behavior with structured output and level filtering.
//
// # Architecture
//
// The logging system is built around these core concepts:
//
// ## Log Levels
//   - **Debug**: Detailed information for debugging and development
//   - **Info**: General informational messages about harness operation
//   - **Warn**: Warning messages that indicate potential issues
//   - **Error**: Error messages for failures and exceptional conditions
//
// ## Structured Logging
// All log entries include:
//   - Timestamp with nanosecond precision
//   - Log level (Debug, Info, Warn, Error)
//   - Subsystem identifier for categorization
//   - Message content with optional formatting
//   - Optional error information
//
// # Usage Examples
//
//	import "nxharness/pkg/logging"
//
//	// Initialize with Info level logging to stderr
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	// Log messages
//	logging.Info("provision", "Unpacking %s", archivePath)
//	logging.Debug("resolver", "Cache hit for %s", coord)
//	logging.Warn("history", "Could not record run: %v", err)
//	logging.Error("services", err, "Service %s failed to start", name)
//
// # Subsystem Organization
//
// Logs are organized by subsystem to enable filtering and categorization:
//
//   - **bootstrap**: Application initialization and startup
//   - **config**: Configuration loading and validation
//   - **resolver**: Artifact resolution and caching
//   - **archive**: Archive extraction
//   - **overlay**: Configuration overlay application
//   - **services**: Dependent service lifecycle
//   - **invoker**: Test command invocation
//   - **history**: Run history persistence
//
// # Journal Mirroring
//
// When enabled via EnableJournal, every record is additionally sent to the
// systemd journal with the subsystem attached as a journal field. On hosts
// without a reachable journal socket this is a silent no-op, so CI containers
// and developer laptops behave identically.
//
// # Thread Safety
//
// The logging system is fully thread-safe:
//   - Safe concurrent logging from multiple goroutines
//   - Level filtering at handler level for efficiency
//   - No memory allocation for filtered-out messages
package logging
