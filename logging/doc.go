// Package logging provides the minimal Logger interface used across casemesh
// and its adapters:
//
//   - ZerologAdapter, the default for the CLI (JSON or console output)
//   - SlogAdapter over log/slog
//   - NoOpLogger for tests and silent setups
//
// Messages are dotted event names ("tool.call.start") followed by snake_case
// key/value pairs:
//
//	logger := logging.NewZerologLogger(logging.ZerologConfig{Level: logging.LogLevelInfo})
//	logger.Info("mcp.server.start", "addr", "0.0.0.0:8080")
package logging
